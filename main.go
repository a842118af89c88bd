package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/illarion/pinvault/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "unlock":
		runUnlock(ctx, os.Args[2:])
	case "ls":
		runLs(ctx, os.Args[2:])
	case "mkdir":
		runMkdir(ctx, os.Args[2:])
	case "rm":
		runRm(ctx, os.Args[2:])
	case "mv":
		runMv(ctx, os.Args[2:])
	case "export":
		runExport(ctx, os.Args[2:])
	case "audio":
		runAudio(ctx, os.Args[2:])
	case "import":
		runImport(ctx, os.Args[2:])
	case "settings":
		runSettings(ctx, os.Args[2:])
	case "passwd":
		runPasswd(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "shell":
		runShell(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// splitList splits a comma-separated flag value, dropping empty items
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func runUnlock(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("unlock", flag.ExitOnError)
	parseFlags(fs, args)

	cmd.Unlock(ctx)
}

func runLs(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	folders := fs.Bool("folders", false, "List top-level folders only")
	parseFlags(fs, args)

	folder := "."
	if fs.NArg() > 0 {
		folder = fs.Arg(0)
	}
	cmd.List(ctx, folder, *folders)
}

func runMkdir(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("mkdir", flag.ExitOnError)
	parent := fs.String("in", ".", "Parent folder")
	parseFlags(fs, args)

	cmd.MakeFolder(ctx, strings.Join(fs.Args(), " "), *parent)
}

func runRm(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	all := fs.Bool("all", false, "Delete every entry of the folder given by --in")
	folder := fs.String("in", ".", "Folder used with --all")
	parseFlags(fs, args)

	if !*all && fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: pinvault rm <path> [path...] | --all [--in folder]")
		os.Exit(1)
	}
	cmd.Remove(ctx, fs.Args(), *all, *folder)
}

func runMv(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("mv", flag.ExitOnError)
	to := fs.String("to", "", "Destination folder")
	from := fs.String("from", "", "Move every file of this folder")
	except := fs.String("except", "", "Comma-separated names to leave out with --from")
	parseFlags(fs, args)

	if *to == "" || (*from == "" && fs.NArg() == 0) {
		fmt.Fprintln(os.Stderr, "Usage: pinvault mv --to <folder> [--from <folder> [--except a,b]] [path...]")
		os.Exit(1)
	}
	cmd.Move(ctx, *to, *from, splitList(*except), fs.Args())
}

func runExport(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	from := fs.String("from", "", "Export every file of this folder")
	except := fs.String("except", "", "Comma-separated names to leave out with --from")
	parseFlags(fs, args)

	if *from == "" && fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: pinvault export [--from <folder> [--except a,b]] [path...]")
		os.Exit(1)
	}
	cmd.Export(ctx, *from, splitList(*except), fs.Args())
}

func runAudio(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("audio", flag.ExitOnError)
	parseFlags(fs, args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: pinvault audio <file> [file...]")
		os.Exit(1)
	}
	cmd.ImportAudio(ctx, fs.Args())
}

func runImport(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	to := fs.String("to", "", "Destination folder in the vault")
	album := fs.String("album", "", "Sub-directory of the source to import")
	kind := fs.String("kind", "image,video", "Comma-separated media kinds")
	resume := fs.Bool("resume", false, "Resume an interrupted import")
	parseFlags(fs, args)

	if *to == "" || (!*resume && fs.NArg() != 1) {
		fmt.Fprintln(os.Stderr, "Usage: pinvault import --to <folder> [--album name] [--kind image,video] <dir>")
		fmt.Fprintln(os.Stderr, "       pinvault import --to <folder> --resume")
		os.Exit(1)
	}

	kinds, err := cmd.ParseKinds(splitList(*kind))
	if err != nil {
		cmd.HandleError(err)
	}
	cmd.Import(ctx, *to, fs.Arg(0), *album, kinds, *resume)
}

func runSettings(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	var update cmd.SettingsUpdate
	fs.StringVar(&update.LockAfter, "lock-after", "", "Auto-lock delay: 3s, 5s or never")
	fs.StringVar(&update.Biometric, "biometric", "", "Keyring unlock: on or off")
	fs.StringVar(&update.DarkTheme, "dark-theme", "", "Dark theme: on or off")
	fs.StringVar(&update.Backup, "backup", "", "Backup: on or off")
	parseFlags(fs, args)

	cmd.Settings(ctx, update)
}

func runPasswd(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	parseFlags(fs, args)

	cmd.Passwd(ctx)
}

func runKeyring(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pinvault keyring <save|delete|status>")
		os.Exit(1)
	}

	switch args[0] {
	case "save":
		cmd.KeyringSave()
	case "delete":
		cmd.KeyringDelete()
	case "status":
		cmd.KeyringStatus()
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", args[0])
		os.Exit(1)
	}
}

func runCompact(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	parseFlags(fs, args)

	cmd.Compact(ctx)
}

func runShell(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	parseFlags(fs, args)

	cmd.Shell(ctx)
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pinvault completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("pinvault - PIN-protected media vault")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pinvault <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  unlock      Unlock the vault, setting a PIN on first use")
	fmt.Println("  ls          List a vault folder")
	fmt.Println("  mkdir       Create a folder in the vault")
	fmt.Println("  rm          Delete files or folders from the vault")
	fmt.Println("  mv          Move files into a vault folder")
	fmt.Println("  export      Move files out of the vault")
	fmt.Println("  audio       Move audio files into the vault")
	fmt.Println("  import      Move media from a directory into the vault")
	fmt.Println("  settings    Show or change settings")
	fmt.Println("  passwd      Change the PIN")
	fmt.Println("  keyring     Manage the PIN in the OS keyring")
	fmt.Println("  compact     Compact the settings database")
	fmt.Println("  shell       Start an interactive session")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  pinvault unlock                          # Set a PIN or unlock")
	fmt.Println("  pinvault mkdir Trips                     # Create a folder")
	fmt.Println("  pinvault import --to Trips ~/DCIM        # Move photos and videos in")
	fmt.Println("  pinvault export --from Trips             # Move them back out")
	fmt.Println()
	fmt.Println("Use 'pinvault help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "unlock":
		fmt.Println("pinvault unlock")
		fmt.Println()
		fmt.Println("Unlocks the vault with the 6-digit PIN.")
		fmt.Println("On first use, prompts for a new PIN and then asks for it again to unlock.")
		fmt.Println("When keyring unlock is enabled and a PIN is saved, no prompt is shown.")
		fmt.Println()
		fmt.Println("Set PINVAULT_PIN to unlock without a prompt.")
	case "ls":
		fmt.Println("pinvault ls [--folders] [folder]")
		fmt.Println()
		fmt.Println("Lists a vault folder with kind, size and capture date.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --folders   List top-level folders only")
	case "mkdir":
		fmt.Println("pinvault mkdir [--in parent] <name>")
		fmt.Println()
		fmt.Println("Creates a folder in the vault.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  pinvault mkdir Trips")
		fmt.Println("  pinvault mkdir --in Trips 2024")
	case "rm":
		fmt.Println("pinvault rm <path> [path...]")
		fmt.Println("pinvault rm --all [--in folder]")
		fmt.Println()
		fmt.Println("Deletes files or folders from the vault. Folders are removed with their contents.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --all       Delete every entry of the folder")
		fmt.Println("  --in        Folder used with --all (default: vault root)")
	case "mv":
		fmt.Println("pinvault mv --to <folder> [--from <folder> [--except a,b]] [path...]")
		fmt.Println()
		fmt.Println("Moves files into a vault folder. Relative paths are inside the vault.")
		fmt.Println("A name already taken in the destination gets a numbered suffix.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --to        Destination folder")
		fmt.Println("  --from      Move every file of this folder")
		fmt.Println("  --except    Comma-separated names to leave out with --from")
	case "export":
		fmt.Println("pinvault export [--from <folder> [--except a,b]] [path...]")
		fmt.Println()
		fmt.Println("Moves files out of the vault into the export directory.")
		fmt.Println("The directory is set with export_dir in the config file.")
	case "audio":
		fmt.Println("pinvault audio <file> [file...]")
		fmt.Println()
		fmt.Println("Moves audio files into the Audios folder of the vault.")
	case "import":
		fmt.Println("pinvault import --to <folder> [--album name] [--kind image,video] <dir>")
		fmt.Println("pinvault import --to <folder> --resume")
		fmt.Println()
		fmt.Println("Moves media from a directory into a vault folder, creating the folder if needed.")
		fmt.Println("An interrupted import can be resumed.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --to        Destination folder")
		fmt.Println("  --album     Sub-directory of <dir> to import")
		fmt.Println("  --kind      Media kinds: image, video, audio, document, other")
		fmt.Println("  --resume    Resume the last interrupted import")
	case "settings":
		fmt.Println("pinvault settings [--lock-after 3s|5s|never] [--biometric on|off] [--dark-theme on|off] [--backup on|off]")
		fmt.Println()
		fmt.Println("Shows the settings, changing the ones given.")
		fmt.Println("The lock delay applies to the interactive shell after it was suspended.")
	case "passwd":
		fmt.Println("pinvault passwd")
		fmt.Println()
		fmt.Println("Changes the PIN. Requires the current PIN.")
		fmt.Println("A PIN saved in the keyring is updated too.")
	case "keyring":
		fmt.Println("pinvault keyring <save|delete|status>")
		fmt.Println()
		fmt.Println("Manages the PIN in the OS keyring.")
		fmt.Println("With keyring unlock enabled, a saved PIN unlocks the vault without a prompt.")
	case "compact":
		fmt.Println("pinvault compact")
		fmt.Println()
		fmt.Println("Compacts the settings database to reclaim unused disk space.")
		fmt.Println("Does not require a PIN.")
	case "shell":
		fmt.Println("pinvault shell")
		fmt.Println()
		fmt.Println("Starts an interactive session. Suspending it with Ctrl-Z locks the vault")
		fmt.Println("once the lock delay has passed.")
	case "completion":
		fmt.Println("pinvault completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(pinvault completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(pinvault completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  pinvault completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
