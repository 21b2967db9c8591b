// Package ui provides the user interface components for the parley TUI.
//
// # Overview
//
// The ui package implements the visual components of parley using the Bubble
// Tea framework and Lipgloss styling library. Components hold only what they
// need to draw; the app package owns state transitions and routes events.
//
// # Layout System
//
//	┌─────────────────────────────────────────────────────┐
//	│ Header (1 line): app title, room title, status      │
//	├─────────────────────────────────────────────────────┤
//	│ Chat viewport: head banner, then message bubbles    │
//	│   theirs on the left                   mine right   │
//	├─────────────────────────────────────────────────────┤
//	│ Markdown preview (optional)                         │
//	│ Reply indicator (when quoting)                      │
//	│ Input (bordered textarea)                           │
//	├─────────────────────────────────────────────────────┤
//	│ Footer (1 line): key hints or a flash message       │
//	└─────────────────────────────────────────────────────┘
//
// Overlays (dialogs, the message menu and the splash screen) are drawn
// centered on top of this layout with ultraviolet.
//
// # Components
//
// Chat: the conversation viewport and compose input. It implements the
// chat.View interface and maps screen rows back to bubbles for mouse hit
// testing.
//
// Header: app title and the room title with a theme-aware gradient.
//
// Footer: context-aware keyboard shortcuts and short-lived flash messages.
package ui
