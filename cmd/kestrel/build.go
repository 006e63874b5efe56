package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"kestrel/internal/buildpipeline"
	"kestrel/internal/driver"
	"kestrel/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags]",
	Short: "Compile every input listed in kestrel.toml",
	Long: `Build reads kestrel.toml from the current directory or one of its
parents and compiles each tree matched by [build].inputs into out_dir.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	buildCmd.Flags().Int("jobs", 0, "max parallel compilations (0 = auto)")
	addCodegenFlags(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	s := sess()
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	manifest, ok, err := project.Load(".")
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(project.NoManifestMessage)
	}
	files, err := manifest.Inputs()
	if err != nil {
		return err
	}

	cfg := manifest.Config.Build
	opts, err := compileOptions(cmd, driver.Options{
		MaxRegisters: cfg.MaxRegisters,
		Annotate:     cfg.Annotate,
	}, cfg.Cache)
	if err != nil {
		return err
	}

	// флаг > KESTREL_JOBS > kestrel.toml
	jobs := cfg.Jobs
	if s.env.Jobs > 0 {
		jobs = s.env.Jobs
	}
	if cmd.Flags().Changed("jobs") {
		if jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return err
		}
	}

	req := &buildpipeline.Request{
		Files:          files,
		OutDir:         manifest.OutDir(),
		BaseDir:        manifest.Root,
		Jobs:           jobs,
		Compile:        opts,
		MaxDiagnostics: s.maxDiagnostics,
	}

	var res buildpipeline.Result
	if !s.quiet && shouldUseTUI(mode) {
		title := fmt.Sprintf("building %s", manifest.Config.Package.Name)
		res, err = runBuildWithUI(cmd.Context(), title, buildpipeline.DisplayNames(files, manifest.Root), req)
	} else {
		if !s.quiet {
			req.Progress = plainProgress(cmd)
		}
		res, err = buildpipeline.Build(cmd.Context(), req)
	}

	if perr := printDiagnostics(cmd, res.Bag); perr != nil && err == nil {
		err = perr
	}
	if s.timings {
		printStageTimings(cmd.ErrOrStderr(), res.Timings)
	}
	if err != nil {
		if errors.Is(err, buildpipeline.ErrBuildFailed) {
			if !s.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
			}
			return errReported
		}
		return err
	}
	if !s.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "built %d file(s) into %s\n", len(res.Files), req.OutDir)
	}
	return nil
}

// plainProgress prints one line per finished file.
func plainProgress(cmd *cobra.Command) buildpipeline.ProgressSink {
	var mu sync.Mutex
	out := cmd.OutOrStdout()
	return buildpipeline.SinkFunc(func(ev buildpipeline.Event) {
		if ev.File == "" {
			return
		}
		var label string
		switch {
		case ev.Status == buildpipeline.StatusError:
			label = "error"
		case ev.Status == buildpipeline.StatusCached:
			label = "cached"
		case ev.Status == buildpipeline.StatusDone && ev.Stage == buildpipeline.StageWrite:
			label = "done"
		default:
			return
		}
		mu.Lock()
		fmt.Fprintf(out, "%8s %s\n", label, ev.File)
		mu.Unlock()
	})
}

