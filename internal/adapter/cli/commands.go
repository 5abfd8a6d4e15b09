package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"resume-api/internal/domain"
	"resume-api/internal/model"

	"github.com/spf13/cobra"
)

func newValidateCommand(rt *state) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a resume and list its problems",
		Long:  "Validates a JSON or YAML resume. FILE \"-\" reads stdin. Exits with status 1 when the resume is invalid.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rt.components(cmd)
			if err != nil {
				return err
			}
			doc, err := readDocument(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			res, err := c.Validator.Validate(model.FromBody(doc))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else if res.Valid {
				fmt.Fprintln(out, "valid")
			} else {
				printErrors(cmd, res.Errors)
			}
			if !res.Valid {
				return ErrInvalidResume
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newRenderCommand(rt *state) *cobra.Command {
	var (
		output    string
		themeName string
	)
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a resume to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rt.components(cmd)
			if err != nil {
				return err
			}
			req, err := rt.request(cmd, c.Validator, args[0], themeName)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			pdf, err := c.Generator.Generate(ctx, req)
			if err != nil {
				return err
			}
			if output == "" {
				output = req.Filename()
			}
			if err := os.WriteFile(output, pdf, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(pdf))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PDF path (default resume-<millis>.pdf)")
	cmd.Flags().StringVarP(&themeName, "theme", "t", "", "theme name")
	return cmd
}

func newPreviewCommand(rt *state) *cobra.Command {
	var (
		output    string
		themeName string
	)
	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Write the themed HTML without starting a browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rt.components(cmd)
			if err != nil {
				return err
			}
			req, err := rt.request(cmd, c.Validator, args[0], themeName)
			if err != nil {
				return err
			}

			html, used, err := c.Generator.Preview(req)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), html)
				return err
			}
			if err := os.WriteFile(output, []byte(html), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (theme %s)\n", output, used)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output HTML path, \"-\" or empty for stdout")
	cmd.Flags().StringVarP(&themeName, "theme", "t", "", "theme name")
	return cmd
}

func newThemesCommand(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List available themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := rt.components(cmd)
			if err != nil {
				return err
			}
			def := c.Themes.Default()
			for _, name := range c.Themes.Names() {
				if name == def {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (default)\n", name)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// request reads and validates the document at path. Validation problems are
// printed and reported as ErrInvalidResume.
func (rt *state) request(cmd *cobra.Command, v model.Validator, path, themeName string) (*domain.RenderRequest, error) {
	doc, err := readDocument(path, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	doc = model.FromBody(doc)
	res, err := v.Validate(doc)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		printErrors(cmd, res.Errors)
		return nil, ErrInvalidResume
	}
	resume, _ := model.AsResume(doc)
	return domain.NewRenderRequest(resume, themeName), nil
}

func printErrors(cmd *cobra.Command, errs []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "invalid:")
	for _, e := range errs {
		fmt.Fprintf(out, "  - %s\n", e)
	}
}
