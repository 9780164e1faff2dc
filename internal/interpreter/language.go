package interpreter

// DetectLanguage tags a command as Arabic when it contains any
// codepoint in the Arabic block, English otherwise. The tag is carried
// on history entries and run results; it does not change processing.
func DetectLanguage(command string) string {
	for _, r := range command {
		if r >= 0x0600 && r <= 0x06FF {
			return "ar"
		}
	}
	return "en"
}
