// Package agentwire implements a bidirectional control protocol engine for
// talking to agent processes over line-delimited JSON.
//
// The engine shares one ordered channel of JSON lines with a peer and
// multiplexes two kinds of traffic over it: data messages, which pass
// through to the consumer untouched, and control exchanges, which the engine
// resolves itself. Control requests flow in both directions: the engine
// sends initialize, interrupt, set_permission_mode, and set_model; the peer
// sends can_use_tool, hook_callback, and mcp_message, which the engine
// answers through the configured callbacks.
//
// # Basic Usage
//
// Wire an Engine to a Transport and consume data messages:
//
//	engine := agentwire.New(transport)
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	for msg, err := range engine.ReceiveMessages(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(msg["type"])
//	}
//
// The sequence ends silently when the peer's stream closes; a transport
// failure is yielded as the final element.
//
// # Streaming Sessions
//
// Streaming mode unlocks the session-management operations and input
// streaming:
//
//	engine := agentwire.New(transport,
//	    agentwire.WithStreaming(true),
//	)
//	engine.Start(ctx)
//	defer engine.Close()
//
//	if _, err := engine.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	go engine.StreamInput(ctx, agentwire.SingleMessage("Hello"))
//
//	// Later, from any goroutine:
//	engine.Interrupt(ctx)
//	engine.SetPermissionMode(ctx, "acceptEdits")
//	engine.SetModel(ctx, "claude-sonnet-4-5")
//
// Outside streaming mode these operations fail with ErrStreamingRequired and
// Initialize records an empty result without touching the wire.
//
// # Peer Callbacks
//
// The peer consults the application before using tools and around its
// lifecycle events. Register a permission callback and hooks:
//
//	engine := agentwire.New(transport,
//	    agentwire.WithStreaming(true),
//	    agentwire.WithCanUseTool(func(ctx context.Context, tool string, input map[string]any, pctx *agentwire.ToolPermissionContext) (agentwire.PermissionResult, error) {
//	        if tool == "Bash" {
//	            return &agentwire.PermissionResultDeny{Message: "no shell access"}, nil
//	        }
//	        return &agentwire.PermissionResultAllow{}, nil
//	    }),
//	    agentwire.WithHooks(map[agentwire.HookEvent][]*agentwire.HookMatcher{
//	        agentwire.HookEventPreToolUse: {{
//	            Hooks: []agentwire.HookCallback{myHook},
//	        }},
//	    }),
//	)
//
// Hooks are announced during Initialize under generated callback ids; each
// hook_callback request from the peer is routed to the matching function.
//
// # In-Process MCP Servers
//
// Tools can be served from inside the application. The peer addresses them
// with mcp_message control requests and the engine relays the JSON-RPC
// traffic over an in-memory bridge:
//
//	calculator := agentwire.NewServer("calculator", "1.0.0",
//	    agentwire.NewTool("add", "Add two numbers",
//	        agentwire.SimpleSchema(map[string]string{"a": "float64", "b": "float64"}),
//	        addHandler,
//	    ),
//	)
//
//	engine := agentwire.New(transport,
//	    agentwire.WithMCPServer("calculator", calculator),
//	)
//
// # Logging
//
// For detailed operation tracking, use WithLogger:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	engine := agentwire.New(transport, agentwire.WithLogger(logger))
//
// # Error Handling
//
// The engine provides typed errors for different failure scenarios:
//
//	if err := engine.SetModel(ctx, "claude-opus-4-5"); err != nil {
//	    if ctrlErr, ok := errors.AsType[*agentwire.ControlError](err); ok {
//	        log.Printf("peer refused: %s", ctrlErr.Message)
//	    }
//	    if errors.Is(err, agentwire.ErrRequestTimeout) {
//	        log.Print("peer did not answer in time")
//	    }
//	}
package agentwire
