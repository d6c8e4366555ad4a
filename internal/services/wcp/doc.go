// Package wcp exposes the World Control Protocol: the named-tool RPC
// surface over MCP framing. Tools are the only remote mutators; kernel
// mutations made here fire area triggers as a side effect.
//
// Tool names route by prefix: world_*, area_*, character_*, item_*. Over the
// remote (websocket) transport, tools that act as a character require a
// session token whose player controls that character; world and area
// metadata tools are exempt, as is the local stdio transport.
package wcp
