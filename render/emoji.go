package render

// emoji maps Discourse shortcode names to their unicode codepoints.
// Unknown shortcodes pass through literally.
var emoji = map[string]string{
	"smile":            "\U0001F604",
	"smiley":           "\U0001F603",
	"grin":             "\U0001F601",
	"grinning":         "\U0001F600",
	"laughing":         "\U0001F606",
	"joy":              "\U0001F602",
	"rofl":             "\U0001F923",
	"slight_smile":     "\U0001F642",
	"upside_down":      "\U0001F643",
	"wink":             "\U0001F609",
	"blush":            "\U0001F60A",
	"innocent":         "\U0001F607",
	"heart_eyes":       "\U0001F60D",
	"sunglasses":       "\U0001F60E",
	"smirk":            "\U0001F60F",
	"neutral_face":     "\U0001F610",
	"expressionless":   "\U0001F611",
	"thinking":         "\U0001F914",
	"flushed":          "\U0001F633",
	"disappointed":     "\U0001F61E",
	"worried":          "\U0001F61F",
	"angry":            "\U0001F620",
	"rage":             "\U0001F621",
	"cry":              "\U0001F622",
	"sob":              "\U0001F62D",
	"scream":           "\U0001F631",
	"confused":         "\U0001F615",
	"sweat_smile":      "\U0001F605",
	"sweat":            "\U0001F613",
	"sleeping":         "\U0001F634",
	"zzz":              "\U0001F4A4",
	"mask":             "\U0001F637",
	"eyes":             "\U0001F440",
	"wave":             "\U0001F44B",
	"thumbsup":         "\U0001F44D",
	"+1":               "\U0001F44D",
	"thumbsdown":       "\U0001F44E",
	"-1":               "\U0001F44E",
	"ok_hand":          "\U0001F44C",
	"clap":             "\U0001F44F",
	"pray":             "\U0001F64F",
	"muscle":           "\U0001F4AA",
	"point_up":         "☝️",
	"point_right":      "\U0001F449",
	"heart":            "❤️",
	"broken_heart":     "\U0001F494",
	"fire":             "\U0001F525",
	"star":             "⭐",
	"sparkles":         "✨",
	"tada":             "\U0001F389",
	"confetti_ball":    "\U0001F38A",
	"rocket":           "\U0001F680",
	"100":              "\U0001F4AF",
	"warning":          "⚠️",
	"exclamation":      "❗",
	"question":         "❓",
	"white_check_mark": "✅",
	"heavy_check_mark": "✔️",
	"x":                "❌",
	"bulb":             "\U0001F4A1",
	"book":             "\U0001F4D6",
	"books":            "\U0001F4DA",
	"memo":             "\U0001F4DD",
	"pencil2":          "✏️",
	"calendar":         "\U0001F4C5",
	"pushpin":          "\U0001F4CC",
	"paperclip":        "\U0001F4CE",
	"mag":              "\U0001F50D",
	"lock":             "\U0001F512",
	"key":              "\U0001F511",
	"bell":             "\U0001F514",
	"loudspeaker":      "\U0001F4E2",
	"mega":             "\U0001F4E3",
	"envelope":         "✉️",
	"email":            "\U0001F4E7",
	"computer":         "\U0001F4BB",
	"keyboard":         "⌨️",
	"bug":              "\U0001F41B",
	"gear":             "⚙️",
	"wrench":           "\U0001F527",
	"hammer":           "\U0001F528",
	"chart_upwards":    "\U0001F4C8",
	"clock1":           "\U0001F550",
	"hourglass":        "⌛",
	"alarm_clock":      "⏰",
	"coffee":           "☕",
	"beer":             "\U0001F37A",
	"pizza":            "\U0001F355",
	"cake":             "\U0001F370",
	"cow":              "\U0001F42E",
	"cow2":             "\U0001F404",
	"dog":              "\U0001F436",
	"cat":              "\U0001F431",
	"snowman":          "⛄",
	"sunny":            "☀️",
	"cloud":            "☁️",
	"umbrella":         "☔",
	"zap":              "⚡",
	"moon":             "\U0001F314",
	"earth_africa":     "\U0001F30D",
	"gift":             "\U0001F381",
	"trophy":           "\U0001F3C6",
	"checkered_flag":   "\U0001F3C1",
	"tr":               "\U0001F1F9\U0001F1F7",
}
