package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/delaneyj/customelement/codec"
	"github.com/delaneyj/customelement/element"
	"github.com/delaneyj/customelement/host"
)

const previewKey = "preview"

func main() {
	cmd := &cli.Command{
		Name:      "inspect",
		Usage:     "Print the attributes and events of custom element definitions",
		ArgsUsage: "<components.yaml | ->",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  previewKey,
				Usage: "Reflect initial values onto a detached node and show the resulting attributes",
				Value: true,
			},
		},
		Action: inspect,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func inspect(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("missing components file")
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if info, err := f.Stat(); err == nil {
			log.Printf("reading %s (%s)", path, humanize.Bytes(uint64(info.Size())))
		}
		r = f
	}

	components, err := loadComponents(r)
	if err != nil {
		return err
	}

	preview := cmd.Bool(previewKey)
	total := 0
	for _, c := range components {
		n, err := printComponent(os.Stdout, c, preview)
		if err != nil {
			return err
		}
		total += n
	}
	log.Printf("%s components, %s properties", humanize.Comma(int64(len(components))), humanize.Comma(int64(total)))
	return nil
}

func printComponent(w io.Writer, c *component, preview bool) (int, error) {
	def := c.Definition
	var previewed map[string]string
	if preview {
		var err error
		if previewed, err = previewAttributes(def); err != nil {
			return 0, fmt.Errorf("previewing %s: %w", def.Name(), err)
		}
	}

	title := def.Name()
	if parent := def.Parent(); parent != nil {
		title += " extends " + parent.Name()
	}
	fmt.Fprintln(w, title)

	header := []string{"property", "attribute", "observed", "reflect", "notify", "event", "initial"}
	if preview {
		header = append(header, "reflected")
	}
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader(header)

	decls := def.Properties()
	for _, decl := range decls {
		attribute := "-"
		if name, ok := decl.AttributeName(); ok {
			attribute = name
		}
		event := "-"
		if decl.Notify.Enabled() {
			event = codec.EventName(decl.Key)
		}
		row := []string{
			decl.Key,
			attribute,
			strconv.FormatBool(decl.Observe != nil),
			decl.ReflectProperty.String(),
			decl.Notify.String(),
			event,
			fmt.Sprint(decl.Initial),
		}
		if preview {
			row = append(row, previewed[decl.Key])
		}
		tbl.Append(row)
	}

	listeners := def.Listeners()
	if len(listeners) > 0 {
		caption := ""
		for i, l := range listeners {
			if i > 0 {
				caption += ", "
			}
			caption += l.Event + " -> " + l.Handler.String()
		}
		tbl.SetCaption(true, "listeners: "+caption)
	}
	tbl.Render()
	fmt.Fprintln(w)
	return len(decls), nil
}

// previewAttributes attaches an element of def to a detached node, runs its
// first pass and reports each attribute afterwards.
func previewAttributes(def *element.Definition) (map[string]string, error) {
	frames := host.NewManualFrames()
	node := host.NewNode(def.Name())
	el := element.New(def, node, frames, element.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	u := el.Attach()
	frames.FlushAll(10)
	if _, err := u.Result(); err != nil {
		return nil, err
	}

	out := map[string]string{}
	for _, decl := range def.Properties() {
		name, ok := decl.AttributeName()
		if !ok {
			out[decl.Key] = "-"
			continue
		}
		out[decl.Key] = node.Attribute(name).String()
	}
	return out, nil
}
