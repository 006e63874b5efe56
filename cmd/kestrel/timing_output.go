package main

import (
	"fmt"
	"io"
	"time"

	"kestrel/internal/buildpipeline"
)

// printStageTimings prints the summed duration of each stage across a build.
func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	for _, stage := range buildpipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		fmt.Fprintf(out, "%-9s %.1f ms\n", stage, toMillis(timings.Duration(stage)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
