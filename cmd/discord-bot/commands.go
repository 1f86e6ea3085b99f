package main

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	commandName       = "globalping"
	commandOptionName = "command"
)

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        commandName,
		Description: "Run a Globalping measurement, e.g. ping google.com from Europe",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        commandOptionName,
				Description: "Measurement command, or \"help\"",
				Required:    true,
			},
		},
	},
}

// commandText returns the measurement text typed into the slash command.
func commandText(data discordgo.ApplicationCommandInteractionData) string {
	for _, opt := range data.Options {
		if opt.Name == commandOptionName && opt.Type == discordgo.ApplicationCommandOptionString {
			return strings.TrimSpace(opt.StringValue())
		}
	}
	return ""
}

// interactionUserID identifies who ran a command in a guild or a DM.
func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
