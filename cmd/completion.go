package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_pinvault() {
    local cur prev words cword
    _init_completion || return

    local commands="unlock ls mkdir rm mv export audio import settings passwd keyring compact shell help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        ls)
            COMPREPLY=($(compgen -W "--folders" -- "$cur"))
            ;;
        mkdir)
            COMPREPLY=($(compgen -W "--in" -- "$cur"))
            ;;
        rm)
            COMPREPLY=($(compgen -W "--all --in" -- "$cur"))
            ;;
        mv|export)
            COMPREPLY=($(compgen -W "--to --from --except" -- "$cur"))
            ;;
        audio)
            _filedir
            ;;
        import)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "--to --album --kind --resume" -- "$cur"))
            else
                _filedir -d
            fi
            ;;
        settings)
            case "$prev" in
                --lock-after)
                    COMPREPLY=($(compgen -W "3s 5s never" -- "$cur"))
                    ;;
                --biometric|--dark-theme|--backup)
                    COMPREPLY=($(compgen -W "on off" -- "$cur"))
                    ;;
                *)
                    COMPREPLY=($(compgen -W "--lock-after --biometric --dark-theme --backup" -- "$cur"))
                    ;;
            esac
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _pinvault pinvault
`

const zshCompletion = `#compdef pinvault

_pinvault() {
    local -a commands
    commands=(
        'unlock:Unlock the vault, setting a PIN if needed'
        'ls:List a vault folder'
        'mkdir:Create a folder in the vault'
        'rm:Delete files or folders from the vault'
        'mv:Move files into a vault folder'
        'export:Move files out of the vault'
        'audio:Import audio files into the vault'
        'import:Import media from a directory'
        'settings:Show or change settings'
        'passwd:Change the PIN'
        'keyring:Manage the PIN in the OS keyring'
        'compact:Compact the settings database'
        'shell:Start an interactive session'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'pinvault commands' commands
            ;;
        args)
            case "${words[2]}" in
                ls)
                    _arguments '--folders[List top-level folders only]'
                    ;;
                mkdir)
                    _arguments '--in[Parent folder]:folder:'
                    ;;
                rm)
                    _arguments \
                        '--all[Delete every entry of a folder]' \
                        '--in[Folder used with --all]:folder:'
                    ;;
                mv|export)
                    _arguments \
                        '--to[Destination folder]:folder:' \
                        '--from[Take all files of this folder]:folder:' \
                        '--except[Names to leave out]:names:'
                    ;;
                audio)
                    _arguments '*:file:_files'
                    ;;
                import)
                    _arguments \
                        '--to[Destination folder]:folder:' \
                        '--album[Sub-directory of the source]:album:' \
                        '--kind[Media kinds]:kinds:(image video audio document other)' \
                        '--resume[Resume an interrupted import]' \
                        '*:directory:_files -/'
                    ;;
                settings)
                    _arguments \
                        '--lock-after[Auto-lock delay]:duration:(3s 5s never)' \
                        '--biometric[Keyring unlock]:state:(on off)' \
                        '--dark-theme[Dark theme]:state:(on off)' \
                        '--backup[Backup]:state:(on off)'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'pinvault commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_pinvault "$@"
`

const fishCompletion = `# pinvault fish completions

set -l commands unlock ls mkdir rm mv export audio import settings passwd keyring compact shell help completion

complete -c pinvault -f

# Commands
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a unlock -d 'Unlock the vault'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a ls -d 'List a vault folder'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a mkdir -d 'Create a folder'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Delete files or folders'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a mv -d 'Move files into a folder'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a export -d 'Move files out of the vault'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a audio -d 'Import audio files'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a import -d 'Import media from a directory'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a settings -d 'Show or change settings'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a passwd -d 'Change the PIN'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage PIN in OS keyring'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact settings database'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a shell -d 'Interactive session'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c pinvault -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# flags
complete -c pinvault -n "__fish_seen_subcommand_from ls" -l folders -d 'Top-level folders only'
complete -c pinvault -n "__fish_seen_subcommand_from mkdir" -l in -d 'Parent folder'
complete -c pinvault -n "__fish_seen_subcommand_from rm" -l all -d 'Delete every entry of a folder'
complete -c pinvault -n "__fish_seen_subcommand_from rm" -l in -d 'Folder used with --all'
complete -c pinvault -n "__fish_seen_subcommand_from mv export" -l to -d 'Destination folder'
complete -c pinvault -n "__fish_seen_subcommand_from mv export" -l from -d 'Take all files of this folder'
complete -c pinvault -n "__fish_seen_subcommand_from mv export" -l except -d 'Names to leave out'
complete -c pinvault -n "__fish_seen_subcommand_from audio" -F
complete -c pinvault -n "__fish_seen_subcommand_from import" -l to -d 'Destination folder'
complete -c pinvault -n "__fish_seen_subcommand_from import" -l album -d 'Sub-directory of the source'
complete -c pinvault -n "__fish_seen_subcommand_from import" -l kind -a "image video audio document other"
complete -c pinvault -n "__fish_seen_subcommand_from import" -l resume -d 'Resume an interrupted import'
complete -c pinvault -n "__fish_seen_subcommand_from settings" -l lock-after -a "3s 5s never"
complete -c pinvault -n "__fish_seen_subcommand_from settings" -l biometric -a "on off"
complete -c pinvault -n "__fish_seen_subcommand_from settings" -l dark-theme -a "on off"
complete -c pinvault -n "__fish_seen_subcommand_from settings" -l backup -a "on off"

# keyring subcommands
complete -c pinvault -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c pinvault -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c pinvault -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
