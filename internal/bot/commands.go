package bot

// CommandInfo describes a bot command for the chat client's command menu.
type CommandInfo struct {
	Name        string // Command name without slash (e.g., "start")
	Description string
}

// Commands lists the commands shown in the command menu.
// This is the single source of truth for command definitions.
var Commands = []CommandInfo{
	{Name: "register", Description: "Register a tournament"},
	{Name: "result", Description: "Add a result to a tournament"},
	{Name: "stats", Description: "Show your statistics"},
	{Name: "tournaments", Description: "Show your latest tournaments"},
	{Name: "venue", Description: "Show your current venue"},
	{Name: "setvenue", Description: "Set your current venue"},
	{Name: "settings", Description: "Show settings and input formats"},
	{Name: "cancel", Description: "Cancel the current action"},
	{Name: "help", Description: "How to use the bot"},
}
