// cow-notifier syncs a Discourse forum into chat notifications.
package main

import "cow-notifier/cmd"

func main() {
	cmd.Execute()
}
