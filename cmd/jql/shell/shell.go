/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2022-2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package shell

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	jql "github.com/dburkart/jql/api"
	"github.com/dburkart/jql/internal/config"
	"github.com/dburkart/jql/pkg/proto"
	"github.com/dburkart/jql/pkg/repl"
	"github.com/dburkart/jql/pkg/report"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Command = &cobra.Command{
	Use:   "shell",
	Short: "Interactive terminal for validating queries",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := viper.Get("logger").(zerolog.Logger)

		output := viper.GetString("shell.output")
		if !slices.Contains(report.Formats, output) {
			return errors.Errorf("unsupported output format %q", output)
		}

		settings, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		client, err := jql.NewClient(
			settings.Target(viper.GetString("jql.host")),
			jql.WithLogger(log),
			jql.WithBackend(settings.Backend()),
		)
		if err != nil {
			return err
		}
		defer client.Close()

		session := &repl.Session{
			User:   viper.GetString("shell.user"),
			Locale: viper.GetString("shell.locale"),
		}
		return readlinePrompt(client, session, cmd.OutOrStdout(), output, log)
	},
}

func init() {
	Command.Flags().StringP("output", "o", "text", "Output format of results [csv, json, text]")
	Command.Flags().StringP("user", "u", "", "Initial session user (default anonymous)")
	Command.Flags().StringP("locale", "l", "", "Initial session locale")

	viper.BindPFlag("shell.output", Command.Flags().Lookup("output"))
	viper.BindPFlag("shell.user", Command.Flags().Lookup("user"))
	viper.BindPFlag("shell.locale", Command.Flags().Lookup("locale"))
}

func listFunctions(c jql.Client) func(string) []string {
	rsp, err := c.Functions()
	if err != nil {
		return func(string) []string { return nil }
	}
	names := make([]string, 0, len(rsp.Functions))
	for _, f := range rsp.Functions {
		names = append(names, f.Name+"()")
	}
	return func(string) []string {
		return names
	}
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func prompt(s *repl.Session) string {
	user := s.User
	if user == "" {
		user = "anonymous"
	}
	return fmt.Sprintf("\033[31m%s>\033[0m ", user)
}

func readlinePrompt(c jql.Client, session *repl.Session, out io.Writer, output string, log zerolog.Logger) error {
	locales := []readline.PrefixCompleterInterface{readline.PcItem("en"), readline.PcItem("de")}

	completer := readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("validate"),
		readline.PcItem("fields"),
		readline.PcItem("functions", readline.PcItemDynamic(listFunctions(c))),
		readline.PcItem("user"),
		readline.PcItem("locale", locales...),
		readline.PcItem("filter"),
		readline.PcItem("exit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt(session),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return errors.Wrap(err, "starting readline")
	}
	defer rl.Close()

	writer := report.NewOutputWriter(out, output)

	for {
		ln := rl.Line()
		if ln.CanContinue() {
			continue
		} else if ln.CanBreak() {
			break
		}
		line := strings.TrimSpace(ln.Line)

		switch strings.ToUpper(line) {
		case "HELP":
			fmt.Fprintln(out, "usage:")
			fmt.Fprintln(out, completer.Tree("    "))
			continue
		case "EXIT":
			return nil
		}

		req, send, err := session.ParseREPLCommand([]byte(line))
		if err != nil {
			log.Error().Err(err).Send()
			continue
		}
		if !send {
			rl.SetPrompt(prompt(session))
			continue
		}

		msg, err := c.Send(req)
		if err != nil {
			return errors.Wrap(err, "sending message to server")
		}

		if err := writeResponse(writer, req.Command, msg); err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		fmt.Fprintln(out)
	}
	rl.Clean()
	return nil
}

// writeResponse decodes msg as the response to a cmd request and prints it.
// Error responses are returned as errors.
func writeResponse(w report.OutputWriter, cmd string, msg proto.Message) error {
	var rsp interface {
		proto.Unmarshaler
		proto.Printable
	}
	switch cmd {
	case proto.CommandValidate:
		rsp = &proto.ValidateResponse{}
	case proto.CommandFields:
		rsp = &proto.FieldsResponse{}
	case proto.CommandFunctions:
		rsp = &proto.FunctionsResponse{}
	default:
		return errors.Errorf("unexpected response to %s", cmd)
	}

	if err := msg.Unmarshal(rsp); err != nil {
		return err
	}
	return w.Write(rsp)
}
