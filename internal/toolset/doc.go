// Package toolset defines the self-describing action contract shared by the
// conversational dispatcher and the MCP surface.
//
// Each action carries a stable name, a natural-language description consumed
// by the language model to decide applicability, a JSON-schema parameter map
// and an Execute function. The Registry is built once at startup and handed
// to consumers as an effectively immutable, order-preserving list.
package toolset
