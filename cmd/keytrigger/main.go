// Package main starts the keytrigger control session.
package main

import "flag"

// main is the entrypoint for the keytrigger server.
func main() {
	var opts options
	flag.BoolVar(&opts.debug, "debug", false, "Enable verbose per-step logging")
	flag.BoolVar(&opts.list, "list", false, "List application windows and exit")
	flag.StringVar(&opts.target, "target", "", "Target window: index, pid:<n>, exe:<name>, or title substring")
	flag.StringVar(&opts.send, "send", "", "Focus the target, send one command (type:<text>, ctrl+c, f5) and exit")
	flag.Parse()

	if err := run(opts); err != nil {
		logFatal(err)
	}
}
