package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/radixdlt/radix-go/src/radix"
	"github.com/spf13/cobra"
)

//NewRunCmd returns the command that starts a Radix client
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run client",
		PreRunE: loadConfig,
		RunE:    runRadix,
	}
	AddClientFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runRadix(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	go shutdownOnSignal(engine)

	engine.Run()

	return nil
}

func newEngine() (*radix.Radix, error) {
	engine := radix.NewRadix(&_config.Radix)

	if err := engine.Init(); err != nil {
		_config.Radix.Logger().Error("Cannot initialize engine:", err)
		return nil, err
	}

	return engine, nil
}

func shutdownOnSignal(engine *radix.Radix) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	<-signalCh

	engine.Shutdown()
}
