package parser

import (
	"strings"
)

// ExtractTarget pulls the target, an optional @resolver and the "from
// <location>" clause out of the positionals that follow the command verb.
func ExtractTarget(cmd string, positionals []string) (TargetQuery, error) {
	var q TargetQuery

	args := make([]string, 0, len(positionals))
	for _, p := range positionals {
		if q.Resolver == "" && strings.HasPrefix(p, "@") && len(p) > 1 {
			q.Resolver = p[1:]
			continue
		}
		args = append(args, p)
	}

	if q.Resolver != "" && !AcceptsResolver(cmd) {
		return TargetQuery{}, newCommandError("%s does not accept a resolver argument. @%s was provided.", cmd, q.Resolver)
	}

	if len(args) == 0 {
		return q, nil
	}

	q.Target = args[0]
	if cmd != CmdHTTP {
		// chat clients turn bare hostnames into links
		q.Target = strings.TrimPrefix(q.Target, "http://")
	}

	if len(args) == 1 {
		return q, nil
	}

	if args[1] != "from" {
		return TargetQuery{}, newCommandError("Invalid command format. Expected \"%s <target> from <location>\", got \"%s\".", cmd, args[1])
	}

	q.From = strings.TrimSpace(strings.Join(args[2:], " "))
	return q, nil
}
