package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/reoring/eon"
	"github.com/reoring/eon/i18n"
	"github.com/reoring/eon/source/gojson"
	yamlsrc "github.com/reoring/eon/source/yaml"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "eon CLI\n\nUsage:\n  eon select -in doc.(json|yaml) -path a.b[0] [-typed] [-v]\n  eon tree -in doc.(json|yaml) [-v]\n\nNotes:\n  - Use -in - to read stdin; -format json|yaml picks the parser when the extension does not.\n  - -lang ja localizes error messages.")
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "select":
		return selectCmd(args[1:], stdin, stdout, stderr)
	case "tree":
		return treeCmd(args[1:], stdin, stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

type common struct {
	in      string
	format  string
	lang    string
	maxDep  int
	verbose bool
	stderr  io.Writer
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.in, "in", "", "input document (- for stdin)")
	fs.StringVar(&c.format, "format", "", "json or yaml (default: from extension)")
	fs.StringVar(&c.lang, "lang", "en", "message language (en|ja)")
	fs.IntVar(&c.maxDep, "max-depth", 0, "maximum nesting depth (0 = unbounded)")
	fs.BoolVar(&c.verbose, "v", false, "enable verbose logs")
}

func (c *common) logf(format string, a ...any) {
	if c.verbose {
		fmt.Fprintf(c.stderr, format+"\n", a...)
	}
}

func (c *common) load(stdin io.Reader) (*eon.Node, error) {
	i18n.SetLanguage(c.lang)
	format := c.format
	if format == "" {
		switch strings.ToLower(filepath.Ext(c.in)) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "json"
		}
	}
	var data []byte
	var err error
	if c.in == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(c.in)
	}
	if err != nil {
		return nil, err
	}
	c.logf("read %d bytes from %s (format=%s)", len(data), c.in, format)
	switch format {
	case "json":
		return gojson.Parse(data, gojson.Options{MaxDepth: c.maxDep})
	case "yaml":
		return yamlsrc.Parse(data, yamlsrc.Options{MaxDepth: c.maxDep})
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func selectCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("select", flag.ContinueOnError)
	fs.SetOutput(stderr)
	c := &common{stderr: stderr}
	c.register(fs)
	var path string
	var typed bool
	fs.StringVar(&path, "path", "", "path to select (empty selects the root)")
	fs.BoolVar(&typed, "typed", false, "print numbers and booleans unquoted")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if c.in == "" {
		fs.Usage()
		return 2
	}
	root, err := c.load(stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	sel, err := eon.Select(root, path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	c.logf("selected %d node(s) at %q (multi=%v)", sel.Len(), path, sel.IsMulti())
	var out *eon.Node
	if sel.IsMulti() {
		var items []*eon.Node
		for _, n := range sel.Nodes() {
			items = append(items, n)
		}
		out = eon.Array(items...)
	} else {
		out, err = sel.Node()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	b, err := gojson.Marshal(out, gojson.RenderOptions{Typed: typed, Indent: "  "})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, string(b))
	return 0
}

func treeCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	fs.SetOutput(stderr)
	c := &common{stderr: stderr}
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if c.in == "" {
		fs.Usage()
		return 2
	}
	root, err := c.load(stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	printTree(stdout, "", root, 0)
	return 0
}

// printTree writes one line per node: kind, and the literal for scalars.
func printTree(w io.Writer, label string, n *eon.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	line := n.Kind().String()
	if s, ok := n.Text(); ok {
		line += " " + strconv.Quote(s)
	}
	if label != "" {
		line = label + ": " + line
	}
	fmt.Fprintln(w, indent+line)
	switch n.Kind() {
	case eon.KindArray, eon.KindSet:
		for i, it := range n.Items() {
			printTree(w, "["+strconv.Itoa(i)+"]", it, depth+1)
		}
	case eon.KindMap:
		for k, v := range n.Entries() {
			printTree(w, k, v, depth+1)
		}
	}
}
