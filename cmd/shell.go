package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/illarion/pinvault/internal/access"
	"github.com/illarion/pinvault/internal/lifecycle"
)

var errQuit = errors.New("quit")

// Shell keeps the vault open in an interactive session. Suspending the
// shell (Ctrl-Z) counts as leaving the app: on resume the vault locks
// again once the configured lock duration has passed.
func Shell(ctx context.Context) {
	a := MustOpenApp()

	if err := a.RequireUnlocked(ctx); err != nil {
		a.Close()
		HandleError(err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	events := make(chan lifecycle.Event)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.Lifecycle.Run(runCtx, events); err != nil && !errors.Is(err, context.Canceled) {
			a.Log.Warn("lifecycle monitor stopped", zap.Error(err))
		}
	}()
	watchSuspend(runCtx, events)

	defer func() {
		cancel()
		<-done
		a.Close()
	}()

	fmt.Println("pinvault shell. Type 'help' for commands, Ctrl-D to leave.")
	// stdin is read on this goroutine only; PIN prompts share it
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("pinvault> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		if ctx.Err() != nil {
			return
		}
		line := scanner.Text()

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		if args[0] != "exit" && args[0] != "quit" && args[0] != "help" && a.Access.State() != access.Unlocked {
			fmt.Println("Vault locked")
			if err := a.RequireUnlocked(ctx); err != nil {
				printError(err)
				return
			}
		}

		err := shellCommand(ctx, a, args)
		if errors.Is(err, errQuit) {
			return
		}
		if err != nil {
			printError(err)
		}
	}
}

func shellCommand(ctx context.Context, a *App, args []string) error {
	switch args[0] {
	case "ls":
		folder := "."
		if len(args) > 1 {
			folder = args[1]
		}
		return listFolder(a, folder, false)
	case "folders":
		return listFolder(a, ".", true)
	case "mkdir":
		if len(args) < 2 {
			return fmt.Errorf("usage: mkdir <name> [parent]")
		}
		parent := "."
		if len(args) > 2 {
			parent = args[2]
		}
		return makeFolder(a, args[1], parent)
	case "rm":
		if len(args) < 2 {
			return fmt.Errorf("usage: rm <path> [path...]")
		}
		return removeEntries(a, args[1:], false, "")
	case "mv":
		if len(args) < 3 {
			return fmt.Errorf("usage: mv <folder> <path> [path...]")
		}
		return moveFiles(ctx, a, args[1], "", nil, args[2:])
	case "export":
		if len(args) < 2 {
			return fmt.Errorf("usage: export <path> [path...]")
		}
		return exportFiles(ctx, a, "", nil, args[1:])
	case "settings":
		return printSettings(a)
	case "lock":
		a.Access.Lock()
		fmt.Println("Vault locked")
		return nil
	case "help":
		printShellHelp()
		return nil
	case "exit", "quit":
		return errQuit
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printShellHelp() {
	fmt.Println("Commands:")
	fmt.Println("  ls [folder]                 List a folder")
	fmt.Println("  folders                     List top-level folders")
	fmt.Println("  mkdir <name> [parent]       Create a folder")
	fmt.Println("  rm <path> [path...]         Delete files or folders")
	fmt.Println("  mv <folder> <path>...       Move files into a folder")
	fmt.Println("  export <path>...            Move files out of the vault")
	fmt.Println("  settings                    Show settings")
	fmt.Println("  lock                        Lock the vault")
	fmt.Println("  exit                        Leave the shell")
}
