package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2html <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render             Render a LaTeX file or stdin to HTML")
	fmt.Fprintln(w, "  problem            Render one problem from the bank")
	fmt.Fprintln(w, "  batch              Render every problem to a directory")
	fmt.Fprintln(w, "  comment-graphics   Comment out \\includegraphics in problem texts")
	fmt.Fprintln(w, "  doctor             Check pandoc, macros and the problem bank")
	fmt.Fprintln(w, "  css                Print the code highlighting stylesheet")
	fmt.Fprintln(w, "  version            Show version information")
	fmt.Fprintln(w, "  help               Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'tex2html help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags every command accepts.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --static-root <dir>   Directory holding figures and macros.tex")
	fmt.Fprintln(w, "      --db <path>           Problem bank (SQLite file)")
	fmt.Fprintln(w, "      --pandoc <path>       Pandoc binary")
	fmt.Fprintln(w, "  -b, --backend <name>      Backends in order: native, pandoc (repeatable)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Pandoc timeout (e.g., 30s; 0 disables)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show backend attempts and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  TEX2HTML_CONFIG, TEX2HTML_STATIC_ROOT, TEX2HTML_DB, TEX2HTML_PANDOC,")
	fmt.Fprintln(w, "  TEX2HTML_BACKENDS, TEX2HTML_MACROS (also read from ./.env)")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2html render [file|-] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a LaTeX fragment to HTML. Reads stdin when no file or \"-\" is given.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default stdout)")
	fmt.Fprintln(w, "      --strict              Fail when every backend fails")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printProblemUsage prints usage for the problem command.
func printProblemUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2html problem <id> [flags]")
	fmt.Fprintln(w, "       tex2html problem --random [--topic <name>] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a problem from the bank.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --field <s>           text, answer or both (default text)")
	fmt.Fprintln(w, "      --random              Pick a random problem")
	fmt.Fprintln(w, "      --topic <name>        Restrict --random to a topic (\"Any\" = all)")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default stdout)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printBatchUsage prints usage for the batch command.
func printBatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2html batch [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every problem to <out>/<id>.html and write <out>/manifest.yaml.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --out <dir>           Output directory (default batch.outDir)")
	fmt.Fprintln(w, "      --topic <name>        Only problems tagged with this topic")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printCommentGraphicsUsage prints usage for the comment-graphics command.
func printCommentGraphicsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2html comment-graphics [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Prefix \\includegraphics lines in problem texts with \"%\" and save them.")
	fmt.Fprintln(w, "The database is copied to <db>.bak-<timestamp> before the first write.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -n, --dry-run             List affected problems without writing")
	fmt.Fprintln(w, "      --no-backup           Skip the database copy")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2html doctor [--json] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check pandoc, the macro preamble, the problem bank and the environment.")
	fmt.Fprintln(w, "Exits 1 when rendering cannot work.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output as JSON")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printCSSUsage prints usage for the css command.
func printCSSUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2html css [--style <name>] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the stylesheet for highlighted code listings.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --style <name>        Chroma style (default highlight.style)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	if !isCommand(args[0]) {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "problem":
		printProblemUsage(env.Stdout)
	case "batch":
		printBatchUsage(env.Stdout)
	case "comment-graphics":
		printCommentGraphicsUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "css":
		printCSSUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: tex2html version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: tex2html help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	}
}
