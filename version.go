package workbench

// Version is the module version reported by the servers and the CLI.
const Version = "0.1.0"
