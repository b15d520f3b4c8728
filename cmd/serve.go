package cmd

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hydroponica/ecdash/internal/server"
	"github.com/hydroponica/ecdash/internal/session"
)

var (
	serveListen string
	serveDebug  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the datasets once and serve the dashboard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if serveListen != "" {
			c.ListenAddr = serveListen
		}

		log, err := newLogger(serveDebug)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer log.Sync()

		// Fail fast: any load problem halts startup before the listener binds.
		sess, err := session.Open(c)
		if err != nil {
			return err
		}
		for _, w := range sess.Report.Warnings {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
		}

		if !serveDebug {
			gin.SetMode(gin.ReleaseMode)
		}
		return server.New(sess, log).Run(c.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (overrides config, e.g. :8080)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "verbose logging and gin debug mode")
}

func newLogger(debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}
