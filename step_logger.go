package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Criss1210/tarea-4/framework"
)

var (
	passLabel = color.New(color.FgGreen, color.Bold).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	skipLabel = color.New(color.FgYellow).SprintFunc()
)

type ConsoleStepLogger struct {
	Output               io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleStepLogger) StepStarted(id framework.StepID) {
	fmt.Fprintf(c.Output, "[%s]\n", id)
}

func (c *ConsoleStepLogger) StepError(id framework.StepID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.Output, "  %s\n", line)
	}
}

func (c *ConsoleStepLogger) StepFinished(id framework.StepID, failed bool, debugOutput framework.CapturedOutput) {
	if failed {
		fmt.Fprintf(c.Output, "  %s: %s\n", failLabel("FAILED"), id)
	} else {
		fmt.Fprintf(c.Output, "  %s: %s\n", passLabel("PASSED"), id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Output, "    DEBUG ")
	}
}

func (c *ConsoleStepLogger) StepSkipped(id framework.StepID, reason string) {
	if reason == "" {
		fmt.Fprintf(c.Output, "  %s: %s\n", skipLabel("SKIPPED"), id)
	} else {
		fmt.Fprintf(c.Output, "  %s: %s (%s)\n", skipLabel("SKIPPED"), id, reason)
	}
}
