package constants

// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
const DateFormat = "2006-01-02"

// TimeFormat is the standard time format used throughout the application (HH:MM)
const TimeFormat = "15:04"
