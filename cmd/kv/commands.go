package kv

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/spf13/cobra"
)

var (
	pingCmd = &cobra.Command{
		Use:   "ping [message]",
		Short: "Pings the server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAndPrint(append([]string{"PING"}, args...)...)
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the string value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAndPrint("SET", args[0], args[1])
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Gets the string value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAndPrint("GET", args[0])
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key...]",
		Short: "Deletes one or more keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAndPrint(append([]string{"DEL"}, args...)...)
		},
	}
	existsCmd = &cobra.Command{
		Use:   "exists [key...]",
		Short: "Counts how many of the given keys exist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAndPrint(append([]string{"EXISTS"}, args...)...)
		},
	}
	typeCmd = &cobra.Command{
		Use:   "type [key]",
		Short: "Prints the value type stored at a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAndPrint("TYPE", args[0])
		},
	}
	hsetCmd = &cobra.Command{
		Use:   "hset [key] [field value...]",
		Short: "Sets one or more fields of a hash",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAndPrint(append([]string{"HSET"}, args...)...)
		},
	}
	hgetCmd = &cobra.Command{
		Use:   "hget [key] [field]",
		Short: "Gets one field of a hash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAndPrint("HGET", args[0], args[1])
		},
	}
	hgetallCmd = &cobra.Command{
		Use:   "hgetall [key]",
		Short: "Gets all fields and values of a hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAndPrint("HGETALL", args[0])
		},
	}
	cmdCmd = &cobra.Command{
		Use:   "cmd [name] [arg...]",
		Short: "Sends an arbitrary command to the server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAndPrint(args...)
		},
	}
)

// doAndPrint sends one command and prints the reply. Server-side error
// replies are printed, not returned, so the CLI exits zero for them (like
// redis-cli does).
func doAndPrint(args ...string) error {
	reply, err := kvClient.Do(args...)
	if err != nil {
		return err
	}
	fmt.Println(renderFrame(reply, 0))
	return nil
}

// renderFrame formats a reply frame for terminal output
func renderFrame(f resp.Frame, indent int) string {
	pad := strings.Repeat("  ", indent)

	switch v := f.(type) {
	case resp.SimpleString:
		return pad + string(v)
	case resp.SimpleError:
		return pad + "(error) " + string(v)
	case resp.Integer:
		return fmt.Sprintf("%s(integer) %d", pad, int64(v))
	case resp.Double:
		return fmt.Sprintf("%s(double) %v", pad, float64(v))
	case resp.Boolean:
		return fmt.Sprintf("%s(boolean) %v", pad, bool(v))
	case resp.Null:
		return pad + "(nil)"
	case resp.BulkString:
		if v == nil {
			return pad + "(nil)"
		}
		return fmt.Sprintf("%s%q", pad, string(v))
	case resp.BulkError:
		return pad + "(error) " + string(v)
	case resp.Array:
		if v == nil {
			return pad + "(nil)"
		}
		return renderSequence(v, indent)
	case resp.Set:
		return renderSequence(v, indent)
	case resp.Map:
		if len(v) == 0 {
			return pad + "(empty map)"
		}
		lines := make([]string, 0, len(v))
		for i, entry := range v {
			lines = append(lines, fmt.Sprintf("%s%d) %s => %s",
				pad, i+1,
				strings.TrimLeft(renderFrame(entry.Key, indent), " "),
				strings.TrimLeft(renderFrame(entry.Value, indent), " ")))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprintf("%s%v", pad, v)
	}
}

func renderSequence(frames []resp.Frame, indent int) string {
	pad := strings.Repeat("  ", indent)
	if len(frames) == 0 {
		return pad + "(empty)"
	}
	lines := make([]string, 0, len(frames))
	for i, item := range frames {
		lines = append(lines, fmt.Sprintf("%s%d) %s",
			pad, i+1, strings.TrimLeft(renderFrame(item, indent+1), " ")))
	}
	return strings.Join(lines, "\n")
}
