package ui

// Layout constants for panel sizing
const (
	// HeaderHeight is the height of the header in lines
	HeaderHeight = 1

	// FooterHeight is the height of the footer in lines
	FooterHeight = 1

	// TextareaHeight is the number of lines for the chat input textarea
	TextareaHeight = 3

	// TextareaBorderHeight is the border size around the textarea
	TextareaBorderHeight = 2

	// InputPaddingWidth is the horizontal padding inside the input area (Padding(0, 1) = 1 left + 1 right)
	InputPaddingWidth = 2

	// InputBorderWidth is the left plus right border of the input area
	InputBorderWidth = 2

	// InputTotalHeight is the total height of the input area (textarea + borders)
	InputTotalHeight = TextareaHeight + TextareaBorderHeight

	// PreviewHeight is the height of the markdown preview, header included
	PreviewHeight = 6

	// QuoteIndicatorHeight is the height of the "replying to" line
	QuoteIndicatorHeight = 1

	// DefaultWrapWidth is the default width for text wrapping when viewport width is unknown
	DefaultWrapWidth = 80

	// MinBubbleWidth is the narrowest a message bubble is drawn
	MinBubbleWidth = 24

	// NearBottomLines is how far above the end the reader may be and still
	// be considered to follow new messages
	NearBottomLines = 2

	// MinTerminalWidth and MinTerminalHeight bound layout calculations
	MinTerminalWidth  = 40
	MinTerminalHeight = 12
)

// Overlay dimensions
const (
	// ModalWidth is the default width of dialogs and menus
	ModalWidth = 56

	// SplashWidth is the width of the splash screen box
	SplashWidth = 40
)

// HeadBanner is shown above the first message of every room.
const HeadBanner = "ⓘ Your chats are only server-to-end encrypted. Messages are stored without encryption on the relay."

// Preview texts
const (
	PreviewTitle       = "Markdown preview"
	PreviewPlaceholder = "Preview appears here"
)
