package restart

import (
	"errors"
	"strings"

	"happyBot/internal/domain"
)

const (
	SourceJenkins = "Jenkins"
	SourceSSH     = "SSH/Dropbox"
)

// ErrUsage is returned for an update source that is neither Jenkins nor
// Dropbox.
var ErrUsage = errors.New("restart: unknown update source")

// ParseRequest builds a restart request from the update command arguments:
//
//	<j|jenkins|d|dropbox> [-s] [-dev] [-f|--force]
//
// The source is matched on the first letter of the first argument.
func ParseRequest(args []string) (domain.RestartRequest, error) {
	if len(args) == 0 {
		return domain.RestartRequest{}, ErrUsage
	}

	var req domain.RestartRequest
	dev := false
	for _, arg := range args[1:] {
		switch strings.ToLower(arg) {
		case "-s":
			req.Silent = true
		case "-dev":
			dev = true
		case "-f", "--force":
			req.Forced = true
		}
	}

	source := strings.ToLower(args[0])
	switch {
	case strings.HasPrefix(source, "j"):
		req.Source = SourceJenkins
		req.ExitCode = domain.ExitCodeJenkins
		if dev {
			req.ExitCode = domain.ExitCodeJenkinsDev
		}
	case strings.HasPrefix(source, "d"):
		req.Source = SourceSSH
		req.ExitCode = domain.ExitCodeSSH
	default:
		return domain.RestartRequest{}, ErrUsage
	}
	return req, nil
}

func ackMessage(source string) string {
	if source == SourceJenkins {
		return ":white_check_mark: Downloading Update from Jenkins!"
	}
	return ":white_check_mark: Downloading Update via SSH!"
}
