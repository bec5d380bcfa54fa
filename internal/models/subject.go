package models

// Subject is reference data a score entry is recorded against.
type Subject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// DefaultSubjects returns a fresh copy of the seeded subjects in display order.
func DefaultSubjects() []Subject {
	return []Subject{
		{ID: "math", Name: "Toán học", Icon: "Calculator", Color: "bg-blue-500"},
		{ID: "literature", Name: "Ngữ văn", Icon: "BookOpen", Color: "bg-orange-500"},
		{ID: "english", Name: "Tiếng Anh", Icon: "Languages", Color: "bg-purple-500"},
		{ID: "physics", Name: "Vật lý", Icon: "Zap", Color: "bg-indigo-500"},
		{ID: "chemistry", Name: "Hóa học", Icon: "FlaskConical", Color: "bg-emerald-500"},
		{ID: "biology", Name: "Sinh học", Icon: "Dna", Color: "bg-pink-500"},
	}
}
