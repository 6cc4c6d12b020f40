package domain

// JobStatus represents the overall execution state of a build job.
type JobStatus string

const (
	JobInProgress JobStatus = "InProgress"
	JobComplete   JobStatus = "Complete"
	JobFailed     JobStatus = "Failed"
)

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	return s == JobComplete || s == JobFailed
}

// StepStatus represents the execution state of a single pipeline step.
type StepStatus string

const (
	StepNotStarted StepStatus = "NotStarted"
	StepInProgress StepStatus = "InProgress"
	StepSuccess    StepStatus = "Success"
	StepFail       StepStatus = "Fail"
)

// Terminal reports whether the step has finished executing.
func (s StepStatus) Terminal() bool {
	return s == StepSuccess || s == StepFail
}

// Step is a single step within a job's pipeline. Steps are totally ordered
// by StepNumber and execute in that order. LogKeys is nil until the step
// starts; once the step has started it references where the step's log
// output lives.
type Step struct {
	Name       string     `json:"name"`
	StepNumber int        `json:"step_number"`
	Image      string     `json:"image"`
	Commands   []string   `json:"commands"`
	Status     StepStatus `json:"status"`
	LogKeys    []string   `json:"log_key,omitempty"`
}

// Started reports whether the step has left the NotStarted state.
func (s Step) Started() bool {
	return s.Status != StepNotStarted
}

// Job is a single build run as reported by the CI API. It is a read-only
// snapshot: only the backend mutates job state.
type Job struct {
	ID         string    `json:"job_uuid"`
	RepoID     string    `json:"repo_id"`
	RepoURL    string    `json:"repo_url"`
	RepoName   string    `json:"repo_name"`
	CommitID   string    `json:"commit_id"`
	IsFinished bool      `json:"is_finished"`
	Status     JobStatus `json:"status"`
	Steps      []Step    `json:"steps"`
}

// Consistent reports whether the snapshot satisfies the job invariants:
// the finished flag agrees with the status, and every started step has a
// log reference while unstarted steps have none.
func (j Job) Consistent() bool {
	if j.IsFinished != j.Status.Terminal() {
		return false
	}
	for _, s := range j.Steps {
		if s.Started() != (len(s.LogKeys) > 0) {
			return false
		}
	}
	return true
}
