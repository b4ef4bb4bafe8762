package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Start    *StartCommand
	Stop     *StopCommand
	Add      *AddCommand
	Log      *LogCommand
	Status   *StatusCommand
	Edit     *EditCommand
	Remove   *RemoveCommand
	Frames   *FramesCommand
	Projects *ProjectsCommand
	Tags     *TagsCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "punch"
	parser.LongDescription = "Track the time you spend on projects, one frame at a time."

	cmds := &commands{
		Start:    &StartCommand{globals: &globals},
		Stop:     &StopCommand{globals: &globals},
		Add:      &AddCommand{globals: &globals},
		Log:      &LogCommand{globals: &globals},
		Status:   &StatusCommand{globals: &globals},
		Edit:     &EditCommand{globals: &globals},
		Remove:   &RemoveCommand{globals: &globals},
		Frames:   &FramesCommand{globals: &globals},
		Projects: &ProjectsCommand{globals: &globals},
		Tags:     &TagsCommand{globals: &globals},
	}

	parser.AddCommand("start", "Start tracking a project", "Start a new frame for PROJECT, optionally tagged with +TAG arguments.", cmds.Start)
	parser.AddCommand("stop", "Stop the running frame", "Stop the currently running frame, closing it at now or --at.", cmds.Stop)
	parser.AddCommand("add", "Record a finished frame", "Record a frame for PROJECT with explicit --from and --to bounds.", cmds.Add)
	parser.AddCommand("log", "Show frames aggregated by day", "Show matching frames grouped per calendar day with per-day totals.", cmds.Log)
	parser.AddCommand("status", "Show the running frame", "Display the current project and the time spent since it started.", cmds.Status)
	parser.AddCommand("edit", "Edit a frame", "Edit a frame by id, or the last recorded frame when no id is given.", cmds.Edit)
	parser.AddCommand("remove", "Remove a frame", "Remove a frame by id. Asks for confirmation unless --force.", cmds.Remove)
	parser.AddCommand("frames", "List all frame ids", "Display the short ids of all recorded frames, oldest first.", cmds.Frames)
	parser.AddCommand("projects", "List all projects", "Display the list of all existing projects.", cmds.Projects)
	parser.AddCommand("tags", "List all tags", "Display the list of all existing tags.", cmds.Tags)

	return parser, &globals, cmds
}

// Run is the main entry point for the punch CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the
// matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parsing (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("punch %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
