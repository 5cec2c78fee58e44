package domain

// Exit codes understood by the process supervisor. Do not renumber.
const (
	ExitCodeSSH        = 10
	ExitCodeJenkinsDev = 20
	ExitCodeJenkins    = 25
)

type RestartRequest struct {
	ExitCode    int
	Source      string
	Forced      bool
	Silent      bool
	RequestedBy string
}
