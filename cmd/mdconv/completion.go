package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdconv"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // free value, nothing to complete
	flagBool
	flagEnum // has predefined values
	flagFile // file with extensions
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long   string   // --output
	Short  string   // o (empty if none)
	Type   flagType // completion type
	Desc   string   // help text
	Values []string // for enum flags
	Exts   []string // for file flags, without the dot
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
	Exts  []string // file arguments, nil = none
	Words []string // fixed arguments, e.g. shell names
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types and descriptions come from the FlagSet.
type completionMeta struct {
	Values []string
	Exts   []string
	IsDir  bool
}

// flagCompletionMeta maps flag names to their completion metadata.
// Font families are left out: their names contain spaces.
var flagCompletionMeta = map[string]completionMeta{
	// Enum flags
	"to":              {Values: []string{string(mdconv.FormatDOCX), string(mdconv.FormatPDF)}},
	"highlight-style": {Values: mdconv.HighlightStyles()},
	"pdf-engine":      {Values: mdconv.PDFEngines()},
	"paper-size":      {Values: mdconv.PaperSizes()},
	"font-size":       {Values: mdconv.FontSizes()},
	"document-class":  {Values: mdconv.DocumentClasses()},

	// File flags
	"config":        {Exts: []string{"yaml", "yml"}},
	"reference-doc": {Exts: []string{"docx"}},
	"pandoc":        {Exts: []string{}},

	// Directory flags
	"output": {IsDir: true},
	"assets": {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}
		if f.Value.Type() == "bool" {
			fd.Type = flagBool
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.Exts != nil:
				fd.Type = flagFile
				fd.Exts = meta.Exts
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// jsonFlag is the only flag of the listing commands.
var jsonFlag = flagDef{Long: "json", Type: flagBool, Desc: "output as JSON"}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	names := []string{"convert", "serve", "options", "doctor", "config", "version", "help", "completion"}

	return []commandDef{
		{
			Name:  "convert",
			Desc:  "Convert markdown files to DOCX or PDF",
			Flags: extractFlagsFromFlagSet(convertFlagSet(&convertFlags{}, io.Discard)),
			Exts:  []string{"md", "markdown"},
		},
		{
			Name:  "serve",
			Desc:  "Serve the conversion form in the browser",
			Flags: extractFlagsFromFlagSet(serveFlagSet(&serveFlags{}, io.Discard)),
		},
		{Name: "options", Desc: "List supported option values", Flags: []flagDef{jsonFlag}},
		{Name: "doctor", Desc: "Check pandoc and LaTeX installation", Flags: []flagDef{jsonFlag}},
		{Name: "config", Desc: "Print the effective configuration", Exts: []string{"yaml", "yml"}},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command", Words: names},
		{
			Name:  "completion",
			Desc:  "Generate shell completion script",
			Words: []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)},
		},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var script string
	switch shell {
	case ShellBash:
		script = generateBash(getCommands())
	case ShellZsh:
		script = generateZsh(getCommands())
	case ShellFish:
		script = generateFish(getCommands())
	case ShellPowerShell:
		script = generatePowerShell(getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: completion takes one shell name", ErrUsage)
	}
	if err := GenerateCompletion(env.Stdout, Shell(args[0])); err != nil {
		if errors.Is(err, ErrUnsupportedShell) {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return err
	}
	return nil
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdconv completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(mdconv completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(mdconv completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    mdconv completion fish > ~/.config/fish/completions/mdconv.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    mdconv completion powershell | Out-String | Invoke-Expression")
}

// flagSpellings returns "-o --output" style names of f.
func flagSpellings(f flagDef) []string {
	var s []string
	if f.Short != "" {
		s = append(s, "-"+f.Short)
	}
	return append(s, "--"+f.Long)
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(cmds []commandDef) string {
	var b strings.Builder
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}

	b.WriteString("# bash completion for mdconv\n\n")
	b.WriteString("_mdconv() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ $COMP_CWORD -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\") $(compgen -f -X '!*.@(md|markdown)' -- \"$cur\"))\n", strings.Join(names, " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"$cmd\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		writeBashValueCases(&b, c.Flags)

		var spellings []string
		for _, f := range c.Flags {
			spellings = append(spellings, flagSpellings(f)...)
		}
		if len(spellings) > 0 {
			b.WriteString("        if [[ \"$cur\" == -* ]]; then\n")
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(spellings, " "))
			b.WriteString("            return\n")
			b.WriteString("        fi\n")
		}
		switch {
		case len(c.Words) > 0:
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(c.Words, " "))
		case len(c.Exts) > 0:
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -f -X '!*.@(%s)' -- \"$cur\"))\n", strings.Join(c.Exts, "|"))
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("shopt -s extglob\n")
	b.WriteString("complete -o filenames -F _mdconv mdconv\n")
	return b.String()
}

// writeBashValueCases completes the value of the flag in $prev.
func writeBashValueCases(b *strings.Builder, flags []flagDef) {
	var cases []string
	for _, f := range flags {
		pattern := strings.Join(flagSpellings(f), "|")
		switch f.Type {
		case flagEnum:
			cases = append(cases, fmt.Sprintf("        %s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;", pattern, strings.Join(f.Values, " ")))
		case flagFile:
			if len(f.Exts) == 0 {
				cases = append(cases, fmt.Sprintf("        %s) COMPREPLY=($(compgen -f -- \"$cur\")); return ;;", pattern))
			} else {
				cases = append(cases, fmt.Sprintf("        %s) COMPREPLY=($(compgen -f -X '!*.@(%s)' -- \"$cur\")); return ;;", pattern, strings.Join(f.Exts, "|")))
			}
		case flagDir:
			cases = append(cases, fmt.Sprintf("        %s) COMPREPLY=($(compgen -d -- \"$cur\")); return ;;", pattern))
		case flagString:
			cases = append(cases, fmt.Sprintf("        %s) return ;;", pattern))
		}
	}
	if len(cases) == 0 {
		return
	}
	b.WriteString("        case \"$prev\" in\n")
	for _, c := range cases {
		b.WriteString("    " + c + "\n")
	}
	b.WriteString("        esac\n")
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

// zshEscape escapes text for use inside a single-quoted _arguments spec.
func zshEscape(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)
	return r.Replace(s)
}

func generateZsh(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("#compdef mdconv\n\n")
	b.WriteString("_mdconv() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        _files -g '*.(md|markdown)'\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    local cmd=\"${words[2]}\"\n")
	b.WriteString("    shift words\n")
	b.WriteString("    (( CURRENT-- ))\n\n")
	b.WriteString("    case \"$cmd\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		b.WriteString("        _arguments \\\n")
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "            %s \\\n", zshFlagSpec(f))
		}
		switch {
		case len(c.Words) > 0:
			fmt.Fprintf(&b, "            '1:argument:(%s)'\n", strings.Join(c.Words, " "))
		case len(c.Exts) > 0:
			fmt.Fprintf(&b, "            '*:file:_files -g \"*.(%s)\"'\n", strings.Join(c.Exts, "|"))
		default:
			b.WriteString("            '*: :'\n")
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _mdconv mdconv\n")
	return b.String()
}

// zshFlagSpec returns the _arguments spec of one flag.
func zshFlagSpec(f flagDef) string {
	var action string
	switch f.Type {
	case flagBool:
		action = ""
	case flagEnum:
		action = fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagFile:
		if len(f.Exts) == 0 {
			action = ":file:_files"
		} else {
			action = fmt.Sprintf(`:file:_files -g "*.(%s)"`, strings.Join(f.Exts, "|"))
		}
	case flagDir:
		action = ":directory:_files -/"
	default:
		action = ":" + f.Long + ":"
	}

	desc := "[" + zshEscape(f.Desc) + "]"
	if f.Short == "" {
		return "'--" + f.Long + desc + action + "'"
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

// fishQuote single-quotes s for fish.
func fishQuote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s) + "'"
}

func generateFish(cmds []commandDef) string {
	var b strings.Builder
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}

	b.WriteString("# fish completion for mdconv\n\n")
	b.WriteString("complete -c mdconv -f\n\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c mdconv -n __fish_use_subcommand -a %s -d %s\n", c.Name, fishQuote(c.Desc))
	}
	b.WriteString("complete -c mdconv -n __fish_use_subcommand -a '(__fish_complete_suffix .md)'\n")

	for _, c := range cmds {
		b.WriteString("\n")
		cond := fishQuote("__fish_seen_subcommand_from " + c.Name)
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c mdconv -n %s", cond)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			fmt.Fprintf(&b, " -l %s -d %s", f.Long, fishQuote(f.Desc))
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(&b, " -xa %s", fishQuote(strings.Join(f.Values, " ")))
			case flagFile:
				b.WriteString(" -rF")
			case flagDir:
				b.WriteString(" -xa '(__fish_complete_directories)'")
			case flagString:
				b.WriteString(" -x")
			}
			b.WriteString("\n")
		}
		switch {
		case len(c.Words) > 0:
			fmt.Fprintf(&b, "complete -c mdconv -n %s -a %s\n", cond, fishQuote(strings.Join(c.Words, " ")))
		case len(c.Exts) > 0:
			for _, ext := range c.Exts {
				fmt.Fprintf(&b, "complete -c mdconv -n %s -a '(__fish_complete_suffix .%s)'\n", cond, ext)
			}
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func generatePowerShell(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("# PowerShell completion for mdconv\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName mdconv -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $commands = @{\n")
	for _, c := range cmds {
		var words []string
		for _, f := range c.Flags {
			words = append(words, flagSpellings(f)...)
		}
		words = append(words, c.Words...)
		slices.Sort(words)
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = "'" + w + "'"
		}
		fmt.Fprintf(&b, "        '%s' = @(%s)\n", c.Name, strings.Join(quoted, ", "))
	}
	b.WriteString("    }\n\n")
	b.WriteString("    $words = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })\n")
	b.WriteString("    if ($words.Count -le 1 -or ($words.Count -eq 2 -and $wordToComplete)) {\n")
	b.WriteString("        $candidates = $commands.Keys\n")
	b.WriteString("    } else {\n")
	b.WriteString("        $candidates = $commands[$words[1]]\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $candidates | Where-Object { $_ -like \"$wordToComplete*\" } | Sort-Object | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
	return b.String()
}
