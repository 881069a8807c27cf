package cmd

import (
	_ "github.com/System-rat/mcsmp/cmd/instance"
	_ "github.com/System-rat/mcsmp/cmd/remote"
	_ "github.com/System-rat/mcsmp/cmd/root"
	_ "github.com/System-rat/mcsmp/cmd/server"
	_ "github.com/System-rat/mcsmp/cmd/versions"
)
