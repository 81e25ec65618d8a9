// Package hkanno wraps the hkanno command line used to read and write the
// annotation track of .hkx assets.
//
// Extract runs `hkanno dump -o <txt> <hkx>` and Merge runs
// `hkanno update -i <txt> <hkx>`. Both return the tool's merged output minus
// known noise lines and report failures as *ToolError, which matches
// services.ErrExternalTool. Every invocation is logged at debug level with
// its exit code.
package hkanno
