package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"kestrel/internal/buildpipeline"
	"kestrel/internal/ui"
)

type buildOutcome struct {
	result buildpipeline.Result
	err    error
}

// runBuildWithUI runs the build in the background and drives the progress
// view from its events until the event channel closes.
func runBuildWithUI(ctx context.Context, title string, files []string, req *buildpipeline.Request) (buildpipeline.Result, error) {
	if req == nil {
		return buildpipeline.Result{}, fmt.Errorf("missing build request")
	}
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Build(ctx, &reqCopy)
		outcomeCh <- buildOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// дочитываем канал, иначе сборка заблокируется на отправке
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
