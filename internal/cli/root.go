// Package cli wires the xlfilecreator commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/locvowork/xlfilecreator/internal/bootstrap"
	"github.com/locvowork/xlfilecreator/internal/config"
	"github.com/locvowork/xlfilecreator/internal/domain"
	"github.com/locvowork/xlfilecreator/internal/jobconfig"
	"github.com/locvowork/xlfilecreator/internal/logger"
	"github.com/locvowork/xlfilecreator/internal/service"
	"github.com/locvowork/xlfilecreator/pkg/xlsource"
)

var envFiles []string

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "xlfilecreator",
		Short: "Materialize Excel templates into protected, validated workbooks",
		Long: `xlfilecreator reads template sheets (settings rows above data rows) from a
local workbook or a Google spreadsheet and writes formatted workbooks with
dropdown validation, conditional formatting and column locking, optionally one
workbook per value of a split column.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadEnvConfig(envFiles...); err != nil {
				return fmt.Errorf("loading env: %w", err)
			}
			logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH, config.DefaultEnvConfig.LOG_LEVEL)
			cmd.SetContext(logger.Logger().WithContext(cmd.Context()))
			return nil
		},
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "Env files to load (default: .env when present)")

	root.AddCommand(newGenerateCommand(), newRenderCommand(), newReportCommand(), newPurgeCommand(), newServeCommand(), newMigrateCommand())
	return root
}

func withLedger(ctx context.Context, fn func(*service.GenerationService) error) error {
	cfg := config.DefaultEnvConfig
	ledger, err := bootstrap.OpenLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer ledger.Close()
	return fn(service.NewGenerationService(bootstrap.ServiceOptions(cfg), ledger.Repository))
}

func newGenerateCommand() *cobra.Command {
	var jobPath, outputDir string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run a YAML batch job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := jobconfig.Load(jobPath)
			if err != nil {
				return err
			}
			if outputDir != "" {
				job.Output.Dir = outputDir
			}
			return withLedger(cmd.Context(), func(svc *service.GenerationService) error {
				sum, err := svc.RunJob(cmd.Context(), job)
				if err != nil {
					color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "generation failed: %v\n", err)
					return err
				}
				printSummary(cmd.OutOrStdout(), sum)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&jobPath, "config", "c", "job.yaml", "Job file")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output root, overriding the job's output.dir")
	return cmd
}

func printSummary(w io.Writer, sum *domain.BatchSummary) {
	fmt.Fprintf(w, "Project %s: %s\n", color.HiYellowString(sum.Project), color.GreenString("%d file(s)", len(sum.Files)))
	for _, f := range sum.Files {
		fmt.Fprintf(w, "  %s  %s\n", color.HiBlackString(f.FileID), f.Filename)
	}
	fmt.Fprintf(w, "Output:    %s\n", sum.Dir)
	if sum.EncryptedDir != "" {
		fmt.Fprintf(w, "Encrypted: %s\n", sum.EncryptedDir)
	}
	if sum.Manifest != "" {
		fmt.Fprintf(w, "Passwords: %s\n", color.HiYellowString(sum.Manifest))
	}
	for _, a := range sum.Archives {
		fmt.Fprintf(w, "Archive:   %s\n", a)
	}
}

func newRenderCommand() *cobra.Command {
	var (
		input, output string
		req           service.RenderRequest
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one template of a local workbook into a new workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := os.Open(input)
			if err != nil {
				return err
			}
			defer in.Close()

			if req.Sheets.Main != "" {
				d := xlsource.DefaultSheetNames
				req.Sheets.Dropdown, req.Sheets.Options = d.Dropdown, d.Options
				req.Sheets.Picklists, req.Sheets.Conditional = d.Picklists, d.Conditional
			}
			svc := service.NewGenerationService(bootstrap.ServiceOptions(config.DefaultEnvConfig), nil)
			data, err := svc.Render(cmd.Context(), in, req)
			if err != nil {
				return err
			}
			if output == "" {
				output = filepath.Join(filepath.Dir(input), "rendered-"+filepath.Base(input))
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", color.GreenString(output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Source workbook")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output workbook (default: rendered-<input>)")
	cmd.Flags().StringVar(&req.Sheets.Main, "main", "", "Template sheet (default: MAIN)")
	cmd.Flags().StringVar(&req.SheetName, "sheet-name", "", "Output sheet name")
	cmd.Flags().StringVar(&req.Filter, "filter", "", `Row filter expression, e.g. row["Region"] == "North"`)
	cmd.Flags().BoolVar(&req.ExtraRows, "extra-rows", false, "Append blank input rows")
	cmd.Flags().IntVar(&req.ExtraRowCount, "extra-row-count", 0, "Number of blank rows (default: EXTRA_ROW_COUNT)")
	cmd.Flags().BoolVar(&req.SkipNumeric, "skip-numeric", false, "Keep number-formatted cells as text")
	cmd.Flags().StringVar(&req.SheetPassword, "sheet-password", "", "Sheet protection password")
	cmd.Flags().StringVar(&req.WorkbookPassword, "workbook-password", "", "Workbook structure password")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newReportCommand() *cobra.Command {
	var project, output, password string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the ledger entries of a project as a workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd.Context(), func(svc *service.GenerationService) error {
				data, err := svc.FileReport(cmd.Context(), project, password)
				if err != nil {
					return err
				}
				if output == "" {
					output = project + "-files.xlsx"
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", color.GreenString(output))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output workbook (default: <project>-files.xlsx)")
	cmd.Flags().StringVar(&password, "password", "", "Lock the report sheet with this password")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newPurgeCommand() *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove the ledger entries of a project",
		Long:  "Removes the ledger entries of a project. Generated files on disk are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd.Context(), func(svc *service.GenerationService) error {
				n, err := svc.PurgeFiles(cmd.Context(), project)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %s of project %s\n", color.GreenString("%d entr(ies)", n), color.HiYellowString(project))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := bootstrap.NewApp()
			if err := app.Initialize(cmd.Context()); err != nil {
				return err
			}
			return app.Run()
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the ledger schema of the SQL backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bootstrap.Migrate(cmd.Context(), config.DefaultEnvConfig); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ledger %s migrated\n", color.GreenString(config.DefaultEnvConfig.LEDGER_BACKEND))
			return nil
		},
	}
}
