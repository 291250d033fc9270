package uinput

// Linux evdev key codes (linux/input-event-codes.h). Naming follows the
// kernel's KEY_* constants so scripts and the macro engine can refer to
// physical keys by their familiar names.
const (
	KEY_ESC        = 1
	KEY_1          = 2
	KEY_2          = 3
	KEY_3          = 4
	KEY_4          = 5
	KEY_5          = 6
	KEY_6          = 7
	KEY_7          = 8
	KEY_8          = 9
	KEY_9          = 10
	KEY_0          = 11
	KEY_MINUS      = 12
	KEY_EQUAL      = 13
	KEY_BACKSPACE  = 14
	KEY_TAB        = 15
	KEY_Q          = 16
	KEY_W          = 17
	KEY_E          = 18
	KEY_R          = 19
	KEY_T          = 20
	KEY_Y          = 21
	KEY_U          = 22
	KEY_I          = 23
	KEY_O          = 24
	KEY_P          = 25
	KEY_LEFTBRACE  = 26
	KEY_RIGHTBRACE = 27
	KEY_ENTER      = 28
	KEY_LEFTCTRL   = 29
	KEY_A          = 30
	KEY_S          = 31
	KEY_D          = 32
	KEY_F          = 33
	KEY_G          = 34
	KEY_H          = 35
	KEY_J          = 36
	KEY_K          = 37
	KEY_L          = 38
	KEY_SEMICOLON  = 39
	KEY_APOSTROPHE = 40
	KEY_GRAVE      = 41
	KEY_LEFTSHIFT  = 42
	KEY_BACKSLASH  = 43
	KEY_Z          = 44
	KEY_X          = 45
	KEY_C          = 46
	KEY_V          = 47
	KEY_B          = 48
	KEY_N          = 49
	KEY_M          = 50
	KEY_COMMA      = 51
	KEY_DOT        = 52
	KEY_SLASH      = 53
	KEY_RIGHTSHIFT = 54
	KEY_KPASTERISK = 55
	KEY_LEFTALT    = 56
	KEY_SPACE      = 57
	KEY_CAPSLOCK   = 58
	KEY_F1         = 59
	KEY_F2         = 60
	KEY_F3         = 61
	KEY_F4         = 62
	KEY_F5         = 63
	KEY_F6         = 64
	KEY_F7         = 65
	KEY_F8         = 66
	KEY_F9         = 67
	KEY_F10        = 68
	KEY_NUMLOCK    = 69
	KEY_SCROLLLOCK = 70
	KEY_KP7        = 71
	KEY_KP8        = 72
	KEY_KP9        = 73
	KEY_KPMINUS    = 74
	KEY_KP4        = 75
	KEY_KP5        = 76
	KEY_KP6        = 77
	KEY_KPPLUS     = 78
	KEY_KP1        = 79
	KEY_KP2        = 80
	KEY_KP3        = 81
	KEY_KP0        = 82
	KEY_KPDOT      = 83

	KEY_F11 = 87
	KEY_F12 = 88

	KEY_KATAKANA          = 90
	KEY_HIRAGANA          = 91
	KEY_HENKAN            = 92
	KEY_KATAKANAHIRAGANA  = 93
	KEY_MUHENKAN          = 94
	KEY_KPJPCOMMA         = 95
	KEY_KPENTER           = 96
	KEY_RIGHTCTRL         = 97
	KEY_KPSLASH           = 98
	KEY_SYSRQ             = 99
	KEY_RIGHTALT          = 100
	KEY_HOME              = 102
	KEY_UP                = 103
	KEY_PAGEUP            = 104
	KEY_LEFT              = 105
	KEY_RIGHT             = 106
	KEY_END               = 107
	KEY_DOWN              = 108
	KEY_PAGEDOWN          = 109
	KEY_INSERT            = 110
	KEY_DELETE            = 111
	KEY_MUTE              = 113
	KEY_VOLUMEDOWN        = 114
	KEY_VOLUMEUP          = 115
	KEY_POWER             = 116
	KEY_KPEQUAL           = 117
	KEY_PAUSE             = 119

	KEY_LEFTMETA  = 125
	KEY_RIGHTMETA = 126
	KEY_COMPOSE   = 127

	KEY_F13 = 183
	KEY_F14 = 184
	KEY_F15 = 185
	KEY_F16 = 186
	KEY_F17 = 187
	KEY_F18 = 188
	KEY_F19 = 189
	KEY_F20 = 190
	KEY_F21 = 191
	KEY_F22 = 192
	KEY_F23 = 193
	KEY_F24 = 194

	KEY_NEXTSONG     = 163
	KEY_PLAYPAUSE    = 164
	KEY_PREVIOUSSONG = 165
	KEY_STOPCD       = 166

	KEY_CALC  = 140
	KEY_SLEEP = 142

	KEY_HOMEPAGE = 172
	KEY_BACK     = 158
	KEY_FORWARD  = 159
	KEY_REFRESH  = 173
)

// AllKeyCodes enumerates the full capability set the virtual device
// advertises: a standard 104-key layout, the media key block, the
// common extended block (browser nav, calculator, sleep, power,
// F13-F24, Katakana/Hiragana/Henkan family), and the numpad.
var AllKeyCodes = buildKeyCodeTable()

func buildKeyCodeTable() []uint16 {
	codes := []uint16{
		KEY_ESC, KEY_1, KEY_2, KEY_3, KEY_4, KEY_5, KEY_6, KEY_7, KEY_8, KEY_9, KEY_0,
		KEY_MINUS, KEY_EQUAL, KEY_BACKSPACE, KEY_TAB,
		KEY_Q, KEY_W, KEY_E, KEY_R, KEY_T, KEY_Y, KEY_U, KEY_I, KEY_O, KEY_P,
		KEY_LEFTBRACE, KEY_RIGHTBRACE, KEY_ENTER, KEY_LEFTCTRL,
		KEY_A, KEY_S, KEY_D, KEY_F, KEY_G, KEY_H, KEY_J, KEY_K, KEY_L,
		KEY_SEMICOLON, KEY_APOSTROPHE, KEY_GRAVE, KEY_LEFTSHIFT, KEY_BACKSLASH,
		KEY_Z, KEY_X, KEY_C, KEY_V, KEY_B, KEY_N, KEY_M,
		KEY_COMMA, KEY_DOT, KEY_SLASH, KEY_RIGHTSHIFT, KEY_KPASTERISK, KEY_LEFTALT,
		KEY_SPACE, KEY_CAPSLOCK,
		KEY_F1, KEY_F2, KEY_F3, KEY_F4, KEY_F5, KEY_F6, KEY_F7, KEY_F8, KEY_F9, KEY_F10, KEY_F11, KEY_F12,
		KEY_NUMLOCK, KEY_SCROLLLOCK,
		KEY_KP7, KEY_KP8, KEY_KP9, KEY_KPMINUS, KEY_KP4, KEY_KP5, KEY_KP6, KEY_KPPLUS,
		KEY_KP1, KEY_KP2, KEY_KP3, KEY_KP0, KEY_KPDOT, KEY_KPJPCOMMA, KEY_KPENTER, KEY_KPSLASH, KEY_KPEQUAL,
		KEY_RIGHTCTRL, KEY_SYSRQ, KEY_RIGHTALT,
		KEY_HOME, KEY_UP, KEY_PAGEUP, KEY_LEFT, KEY_RIGHT, KEY_END, KEY_DOWN, KEY_PAGEDOWN,
		KEY_INSERT, KEY_DELETE, KEY_PAUSE,
		KEY_LEFTMETA, KEY_RIGHTMETA, KEY_COMPOSE,
		KEY_F13, KEY_F14, KEY_F15, KEY_F16, KEY_F17, KEY_F18, KEY_F19, KEY_F20, KEY_F21, KEY_F22, KEY_F23, KEY_F24,
		KEY_KATAKANA, KEY_HIRAGANA, KEY_HENKAN, KEY_KATAKANAHIRAGANA, KEY_MUHENKAN,
		KEY_MUTE, KEY_VOLUMEDOWN, KEY_VOLUMEUP, KEY_POWER,
		KEY_NEXTSONG, KEY_PLAYPAUSE, KEY_PREVIOUSSONG, KEY_STOPCD,
		KEY_CALC, KEY_SLEEP,
		KEY_HOMEPAGE, KEY_BACK, KEY_FORWARD, KEY_REFRESH,
	}
	return codes
}
