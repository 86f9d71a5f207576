// Command gradual-server runs the alarm scheduler daemon.
package main

import "github.com/oshokin/gradual/cmd/gradual-server/cmd"

func main() {
	cmd.Execute()
}
