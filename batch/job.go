// Package batch generates Slurm job scripts for thread-count scaling runs of
// the simulation and hands them to the scheduler.
package batch

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/template"
)

// Cluster is a cluster/partition pair that a job is sent to.
type Cluster struct {
	Name, Partition string
}

var (
	SmallCluster = Cluster{"cm2_tiny", "cm2_tiny"}
	LargeCluster = Cluster{"cm2", "cm2_std"}
)

const DefaultThreadCutoff = 16

// Job is a single job script.
type Job struct {
	Name    string
	Threads int
	Input   string
	Cluster Cluster

	Executable, Arguments       string
	Memory, TimeLimit, MailUser string
}

var scriptTemplate = template.Must(template.New("job").Parse(
	`#!/bin/bash
#SBATCH -J {{.Name}}
#SBATCH -o ./%x.%j.%N.out
#SBATCH -D .
#SBATCH --get-user-env
#SBATCH --clusters={{.Cluster.Name}}
#SBATCH --partition={{.Cluster.Partition}}
#SBATCH --mem={{.Memory}}
#SBATCH --cpus-per-task={{.Threads}}
#SBATCH --export=NONE
{{- if .MailUser}}
#SBATCH --mail-user={{.MailUser}}
{{- end}}
#SBATCH --time={{.TimeLimit}}
OMP_NUM_THREADS={{.Threads}} {{.Executable}} {{.Input}}{{if .Arguments}} {{.Arguments}}{{end}}
`))

// Script renders the job script.
func (j *Job) Script() (string, error) {
	buf := &bytes.Buffer{}
	if err := scriptTemplate.Execute(buf, j); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FileName returns the name of the file the script is written to.
func (j *Job) FileName() string {
	return j.Name + ".sh"
}

// Sweep describes a set of otherwise identical jobs run at different thread
// counts.
type Sweep struct {
	Name, Input string
	Threads     []int

	// Jobs with fewer than Cutoff threads go to Small, the rest to Large.
	Cutoff       int
	Small, Large Cluster

	Executable, Arguments       string
	Memory, TimeLimit, MailUser string
}

// NewSweep returns a Sweep with the defaults used for the scaling runs.
func NewSweep(name, input string, threads []int) *Sweep {
	return &Sweep{
		Name: name, Input: input, Threads: threads,
		Cutoff: DefaultThreadCutoff,
		Small:  SmallCluster, Large: LargeCluster,
		Executable: "src/MolSim", Arguments: "-x -s 4 -p",
		Memory: "200mb", TimeLimit: "00:30:00",
	}
}

// ClusterFor returns the cluster a job with the given thread count runs on.
func (s *Sweep) ClusterFor(threads int) Cluster {
	if threads < s.Cutoff {
		return s.Small
	}
	return s.Large
}

// Jobs returns one job for every thread count, in order.
func (s *Sweep) Jobs() []Job {
	jobs := make([]Job, len(s.Threads))
	for i, t := range s.Threads {
		jobs[i] = Job{
			Name:       fmt.Sprintf("%s_%d", s.Name, t),
			Threads:    t,
			Input:      s.Input,
			Cluster:    s.ClusterFor(t),
			Executable: s.Executable,
			Arguments:  s.Arguments,
			Memory:     s.Memory,
			TimeLimit:  s.TimeLimit,
			MailUser:   s.MailUser,
		}
	}
	return jobs
}

// Run writes every job script to dir and submits it. A failed submission is
// logged and the sweep continues with the next job. The paths of the written
// scripts are returned.
func (s *Sweep) Run(dir string, sub Submitter) ([]string, error) {
	jobs := s.Jobs()
	paths := make([]string, 0, len(jobs))

	for i := range jobs {
		script, err := jobs[i].Script()
		if err != nil {
			return paths, err
		}

		path := filepath.Join(dir, jobs[i].FileName())
		if err = os.WriteFile(path, []byte(script), 0755); err != nil {
			return paths, err
		}
		paths = append(paths, path)

		log.Printf(
			"Wrote %s (%d threads on %s/%s).", path, jobs[i].Threads,
			jobs[i].Cluster.Name, jobs[i].Cluster.Partition,
		)
		if err = sub.Submit(path); err != nil {
			log.Printf("Submitting %s failed: %s", path, err.Error())
		}
	}

	return paths, nil
}
