package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	cfg "github.com/maastricht-university/walkid/config"
)

// app carries what every command shares.
type app struct {
	v          *viper.Viper
	fs         afero.Fs
	configPath string
	out        io.Writer
	errOut     io.Writer
}

func main() {
	a := &app{v: viper.New(), fs: afero.NewOsFs(), out: os.Stdout, errOut: os.Stderr}
	if err := newRootCmd(a).Execute(); err != nil {
		logrus.WithError(err).Error("walkid failed")
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "walkid",
		Short:         "Identify who is walking from accelerometer recordings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (defaults to config/$CONFIG_ENV/config.yaml or ./config.yaml)")
	pf.String("data", "", "directory holding the walking-data-*.csv recordings")
	pf.StringP("output", "o", "", "directory receiving the model and the evaluation report")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (text or json)")
	a.bind(pf.Lookup("data"), "paths.data")
	a.bind(pf.Lookup("output"), "paths.outputs")
	a.bind(pf.Lookup("log-level"), "pipeline.log_level")
	a.bind(pf.Lookup("log-format"), "pipeline.log_format")

	root.AddCommand(
		newTrainCmd(a),
		newPredictCmd(a),
		newInspectCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup resolves the configuration and builds the logger.
func (a *app) setup() (*cfg.Root, *logrus.Logger, error) {
	c, err := cfg.Load(a.v, a.configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := c.Logger(a.errOut)
	if err != nil {
		return nil, nil, err
	}
	log.WithFields(logrus.Fields{"name": c.Pipeline.Name, "version": c.Pipeline.Version}).Debug("configuration loaded")
	return c, log, nil
}

func (a *app) bind(f *pflag.Flag, key string) {
	if err := a.v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}
