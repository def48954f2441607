package activity

import (
	"strings"
)

var activityIcons = map[string]string{
	"Barre":             "https://img.icons8.com/?size=100&id=66924&format=png&color=000000",
	"Breathwork":        "https://img.icons8.com/?size=100&id=9798&format=png&color=000000",
	"Cardio":            "https://img.icons8.com/?size=100&id=71221&format=png&color=000000",
	"Cycling":           "https://img.icons8.com/?size=100&id=47443&format=png&color=000000",
	"Hiking":            "https://img.icons8.com/?size=100&id=9844&format=png&color=000000",
	"Indoor Cardio":     "https://img.icons8.com/?size=100&id=62779&format=png&color=000000",
	"Indoor Cycling":    "https://img.icons8.com/?size=100&id=47443&format=png&color=000000",
	"Indoor Rowing":     "https://img.icons8.com/?size=100&id=71098&format=png&color=000000",
	"Pilates":           "https://img.icons8.com/?size=100&id=9774&format=png&color=000000",
	"Meditation":        "https://img.icons8.com/?size=100&id=9798&format=png&color=000000",
	"Rowing":            "https://img.icons8.com/?size=100&id=71491&format=png&color=000000",
	"Running":           "https://img.icons8.com/?size=100&id=k1l1XFkME39t&format=png&color=000000",
	"Strength Training": "https://img.icons8.com/?size=100&id=107640&format=png&color=000000",
	"Stretching":        "https://img.icons8.com/?size=100&id=djfOcRn1m_kh&format=png&color=000000",
	"Swimming":          "https://img.icons8.com/?size=100&id=9777&format=png&color=000000",
	"Treadmill Running": "https://img.icons8.com/?size=100&id=9794&format=png&color=000000",
	"Walking":           "https://img.icons8.com/?size=100&id=9807&format=png&color=000000",
	"Yoga":              "https://img.icons8.com/?size=100&id=9783&format=png&color=000000",
}

var subtypeToType = map[string]string{
	"Barre":             "Strength",
	"Indoor Cardio":     "Cardio",
	"Indoor Cycling":    "Cycling",
	"Indoor Rowing":     "Rowing",
	"Speed Walking":     "Walking",
	"Strength Training": "Strength",
	"Treadmill Running": "Running",
}

var trainingMessagePrefixes = []struct {
	prefix string
	label  string
}{
	{prefix: "NO_", label: "No Benefit"},
	{prefix: "MINOR_", label: "Some Benefit"},
	{prefix: "RECOVERY_", label: "Recovery"},
	{prefix: "MAINTAINING_", label: "Maintaining"},
	{prefix: "IMPROVING_", label: "Impacting"},
	{prefix: "IMPACTING_", label: "Impacting"},
	{prefix: "HIGHLY_", label: "Highly Impacting"},
	{prefix: "OVERREACHING_", label: "Overreaching"},
}

// titleCase replicates upstream key formatting: underscores to spaces, each
// word capitalized.
func titleCase(value string) string {
	words := strings.Fields(strings.ReplaceAll(value, "_", " "))
	for i, word := range words {
		lower := strings.ToLower(word)
		words[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(words, " ")
}

// FormatActivityType maps a raw tracker type key plus the activity name to
// the (type, subtype) pair shown in the destination. Name-based overrides win
// over the key mapping.
func FormatActivityType(typeKey, activityName string) (string, string) {
	formatted := "Unknown"
	if strings.TrimSpace(typeKey) != "" {
		formatted = titleCase(typeKey)
	}

	activityType := formatted
	activitySubtype := formatted

	switch {
	case formatted == "Rowing V2":
		activityType = "Rowing"
	case formatted == "Yoga" || formatted == "Pilates":
		activityType = "Yoga/Pilates"
		activitySubtype = formatted
	}

	if mapped, ok := subtypeToType[formatted]; ok {
		activityType = mapped
		activitySubtype = formatted
	}

	lowerName := strings.ToLower(activityName)
	switch {
	case activityName != "" && strings.Contains(lowerName, "meditation"):
		return "Meditation", "Meditation"
	case activityName != "" && strings.Contains(lowerName, "barre"):
		return "Strength", "Barre"
	case activityName != "" && strings.Contains(lowerName, "stretch"):
		return "Stretching", "Stretching"
	}

	return activityType, activitySubtype
}

// FormatActivityName rewrites the tracker's ENTERTAINMENT placeholder.
func FormatActivityName(name string) string {
	return strings.ReplaceAll(name, "ENTERTAINMENT", "Netflix")
}

// FormatTrainingMessage maps raw training-effect message codes to display
// labels by prefix; unrecognized codes pass through unchanged.
func FormatTrainingMessage(message string) string {
	for _, entry := range trainingMessagePrefixes {
		if strings.HasPrefix(message, entry.prefix) {
			return entry.label
		}
	}
	return message
}

func FormatTrainingEffect(label string) string {
	return titleCase(label)
}

// IconURL resolves the external icon for a (type, subtype) pair. The subtype
// wins when it differs from the main type.
func IconURL(activityType, activitySubtype string) string {
	key := activityType
	if activitySubtype != activityType {
		key = activitySubtype
	}
	return activityIcons[key]
}
