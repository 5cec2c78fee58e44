package commands

// CommandDescriptor exposes command metadata to the HTTP API.
type CommandDescriptor struct {
	Name            string   `json:"name"`
	Aliases         []string `json:"aliases,omitempty"`
	Platforms       []string `json:"platforms,omitempty"`
	Category        string   `json:"category"`
	Description     string   `json:"description"`
	Usage           string   `json:"usage"`
	Role            string   `json:"role,omitempty"`
	CooldownSeconds float64  `json:"cooldown_seconds,omitempty"`
}

// Catalog describes every command registered on the router.
func Catalog(r *Router) []CommandDescriptor {
	cmds := r.Commands()
	out := make([]CommandDescriptor, 0, len(cmds))
	for _, cmd := range cmds {
		platforms := make([]string, 0, len(cmd.Platforms))
		for _, p := range cmd.Platforms {
			if p == "" {
				continue
			}
			platforms = append(platforms, string(p))
		}
		item := CommandDescriptor{
			Name:        cmd.Name,
			Aliases:     append([]string(nil), cmd.Aliases...),
			Platforms:   platforms,
			Category:    string(cmd.Category),
			Description: cmd.Help,
			Usage:       usageLine(r.Prefix(), &cmd),
		}
		if cmd.Role != "" {
			item.Role = r.perms.Table().DisplayName(cmd.Role)
		}
		if cmd.Cooldown != nil {
			item.CooldownSeconds = cmd.Cooldown.Delay().Seconds()
		}
		out = append(out, item)
	}
	return out
}
