package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fega/portfolio/docs"
	"github.com/google/subcommands"
)

// topicCmd prints the user manual.
type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "read the user manual" }
func (*topicCmd) Usage() string {
	return `pcs topic [<topic>...]

  Prints the manual pages of the given topics, or of every topic with '*'.
  Without a topic, prints the list of topics.
`
}
func (*topicCmd) SetFlags(*flag.FlagSet) {}

func (*topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	md := docs.Index()
	if f.NArg() > 0 {
		var err error
		if md, err = docs.GetTopics(f.Args()...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
