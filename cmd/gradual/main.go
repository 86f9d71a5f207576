// Command gradual controls the scheduler daemon and edits alarms.
package main

import "github.com/oshokin/gradual/cmd/gradual/cmd"

func main() {
	cmd.Execute()
}
