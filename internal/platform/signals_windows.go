package platform

import "os"

// Console apps on Windows do not reliably receive SIGTERM.
var shutdownSignals = []os.Signal{os.Interrupt}
