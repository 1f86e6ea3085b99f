package help

import (
	"strings"
	"testing"

	"github.com/aleister1102/globalping-bots/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_ListsEveryAllowedFlag(t *testing.T) {
	for _, cmd := range parser.Commands {
		t.Run(cmd, func(t *testing.T) {
			text := Command(cmd)
			for _, flag := range parser.AllowedFlags(cmd) {
				assert.Contains(t, text, "--"+flag)
			}
			assert.True(t, strings.HasPrefix(text, summaries[cmd]))
		})
	}
}

func TestCommand_ShowsEnums(t *testing.T) {
	text := Command(parser.CmdDNS)
	assert.Contains(t, text, "One of: UDP, TCP.")
	assert.Contains(t, text, "MX")
	assert.Contains(t, text, "dns <target> [@resolver] [from <location>] [flags]")

	assert.Contains(t, Command(parser.CmdHTTP), "One of: GET, HEAD, OPTIONS.")
	assert.Contains(t, Command(parser.CmdPing), "-F, --from")
}

func TestCommand_UnknownFallsBackToGeneral(t *testing.T) {
	assert.Equal(t, General(), Command("nope"))
	assert.Equal(t, General(), Command(""))
}

func TestGeneral_ListsTopics(t *testing.T) {
	text := General()
	for _, topic := range Topics {
		assert.Contains(t, text, topic)
	}
}

func TestTopic(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"help", ""},
		{"help dns", "dns"},
		{"help HTTP", "http"},
		{"ping --help", "ping"},
		{"mtr help", "mtr"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := parser.Parse(tt.input)
			require.NoError(t, err)
			require.True(t, f.Help)
			assert.Equal(t, tt.want, Topic(f))
		})
	}
}
