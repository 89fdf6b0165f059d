package serve

import (
	cmdUtil "github.com/ValentinKolb/rKV/cmd/util"
	"github.com/ValentinKolb/rKV/server"
	"github.com/ValentinKolb/rKV/server/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = common.DefaultServerConfig()
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the rKV server",
		Long:    `Start the rKV server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is RKV_<flag> (e.g. RKV_ENDPOINT=0.0.0.0:6380)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:6379", cmdUtil.WrapString("The address on which the server will listen (host:port for tcp, a socket path for unix)"))

	key = "transport"
	ServeCmd.PersistentFlags().String(key, "tcp", cmdUtil.WrapString("Transport to use (tcp, unix)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 0, cmdUtil.WrapString("Idle timeout per connection in seconds (0 = no timeout)"))

	key = "max-frame-depth"
	ServeCmd.PersistentFlags().Int(key, serveCmdConfig.MaxFrameDepth, cmdUtil.WrapString("Maximum nesting depth of protocol frames; deeper input is rejected as a protocol error"))

	key = "max-bulk-size"
	ServeCmd.PersistentFlags().Int(key, serveCmdConfig.MaxBulkSize, cmdUtil.WrapString("Maximum size of a bulk string in bytes; larger declared lengths are rejected as a protocol error"))

	key = "write-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The socket write buffer size in KB (0 = OS default)"))

	key = "read-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The socket read buffer size in KB (0 = OS default)"))

	key = "tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The keepalive interval in seconds (0 = disabled, only for tcp)"))

	key = "tcp-linger"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The linger time in seconds (only for tcp)"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Optional address of the HTTP endpoint serving Prometheus metrics and pprof (empty = disabled)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.Transport = viper.GetString("transport")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.MaxFrameDepth = viper.GetInt("max-frame-depth")
	serveCmdConfig.MaxBulkSize = viper.GetInt("max-bulk-size")
	serveCmdConfig.Socket.WriteBufferSize = viper.GetInt("write-buffer") * 1024
	serveCmdConfig.Socket.ReadBufferSize = viper.GetInt("read-buffer") * 1024
	serveCmdConfig.TCP.TCPNoDelay = viper.GetBool("tcp-nodelay")
	serveCmdConfig.TCP.TCPKeepAliveSec = viper.GetInt("tcp-keepalive")
	serveCmdConfig.TCP.TCPLingerSec = viper.GetInt("tcp-linger")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run starts the server and blocks until the listener is closed
func run(_ *cobra.Command, _ []string) error {
	s, err := server.New(serveCmdConfig)
	if err != nil {
		return err
	}

	if err := s.Listen(); err != nil {
		return err
	}

	return s.Serve()
}
