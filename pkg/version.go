package uplift

// Version of the uplift application and its MCP server.
var Version = "0.3.0"
