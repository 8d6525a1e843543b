package main

import (
	dig_container "github.com/trezcool/masomo-admin/apps/api/di/dig"
	echoapi "github.com/trezcool/masomo-admin/apps/api/echo"
	"github.com/trezcool/masomo-admin/core"
)

func startWithDig() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		storage dig_container.StorageParam,
		server *echoapi.Server,
	) {
		run(conf, apiLogger, server, storage.Closer)
	}))
}
