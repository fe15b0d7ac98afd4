package batch

import (
	"log"
	"os"
	"os/exec"
)

// Submitter hands a job script to a scheduler.
type Submitter interface {
	Submit(path string) error
}

// CommandSubmitter submits scripts by running Command with the script path
// as its only argument, e.g. "sbatch job.sh". The command's output goes to
// the process's stdout and stderr.
type CommandSubmitter struct {
	Command string
}

func (sub *CommandSubmitter) Submit(path string) error {
	cmd := exec.Command(sub.Command, path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// DryRunSubmitter only logs the command which would have been run.
type DryRunSubmitter struct {
	Command string
}

func (sub *DryRunSubmitter) Submit(path string) error {
	log.Printf("Dry run: %s %s", sub.Command, path)
	return nil
}
