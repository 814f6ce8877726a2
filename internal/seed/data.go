package seed

// CategorySeed is a default category.
type CategorySeed struct {
	Name        string
	Description string
	Color       string
	Icon        string
	Order       int
}

// QuoteSeed is a default quote, referencing its category by name.
type QuoteSeed struct {
	Text     string
	Author   string
	Category string
}

var DefaultCategories = []CategorySeed{
	{Name: "Éxito", Description: "Frases sobre el logro y la constancia", Color: "#10b981", Icon: "trophy", Order: 1},
	{Name: "Motivación", Description: "Impulso para empezar cada día", Color: "#f59e0b", Icon: "flame", Order: 2},
	{Name: "Trabajo", Description: "Esfuerzo, oficio y pasión", Color: "#3b82f6", Icon: "briefcase", Order: 3},
	{Name: "Sueños", Description: "Metas y aspiraciones", Color: "#8b5cf6", Icon: "star", Order: 4},
	{Name: "Futuro", Description: "Construir lo que viene", Color: "#ec4899", Icon: "compass", Order: 5},
}

var DefaultQuotes = []QuoteSeed{
	{Text: "El éxito es la suma de pequeños esfuerzos repetidos día tras día.", Author: "Robert Collier", Category: "Éxito"},
	{Text: "No cuentes los días, haz que los días cuenten.", Author: "Muhammad Ali", Category: "Motivación"},
	{Text: "El único modo de hacer un gran trabajo es amar lo que haces.", Author: "Steve Jobs", Category: "Trabajo"},
	{Text: "Si puedes soñarlo, puedes lograrlo.", Author: "Walt Disney", Category: "Sueños"},
	{Text: "La mejor manera de predecir el futuro es crearlo.", Author: "Peter Drucker", Category: "Futuro"},
	{Text: "El fracaso es la oportunidad de comenzar de nuevo, pero con más experiencia.", Author: "Henry Ford", Category: "Éxito"},
	{Text: "La única limitación que tienes es la que te pones tú mismo.", Author: "Anónimo", Category: "Motivación"},
	{Text: "El trabajo duro supera al talento cuando el talento no trabaja duro.", Author: "Tim Notke", Category: "Trabajo"},
	{Text: "Todos tus sueños pueden hacerse realidad si tienes el coraje de perseguirlos.", Author: "Walt Disney", Category: "Sueños"},
	{Text: "El futuro pertenece a quienes creen en la belleza de sus sueños.", Author: "Eleanor Roosevelt", Category: "Futuro"},
}
