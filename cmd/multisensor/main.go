package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/multisensor/pkg/controller"
	fx "github.com/robotalks/multisensor/pkg/framework"
	"github.com/robotalks/multisensor/pkg/sensor/board"
)

func init() {
	controller.SetupFlags()
	board.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	env, err := controller.NewConfig().NewEnv(board.NewConfig())
	if err != nil {
		glog.Fatalf("setup: %v", err)
	}
	defer env.Close()

	glog.Infof("device %s, mode %s", env.Device, env.Config.Mode)
	if env.Hub != nil {
		glog.Infof("websocket stream on %s%s", env.Hub.Addr, env.Hub.Path)
	}
	err = fx.NewRunner().HandleSignals().Go(env.Runnable()).Wait()
	if err != nil {
		glog.Fatalf("%v", err)
	}
}
