package page

// Field is one input of the valuation form
type Field struct {
	Name     string
	Label    string
	Type     string
	Min      string
	Step     string
	Required bool
	Options  []string
}

// DefaultFields lists the listing attributes the price model was trained on
func DefaultFields() []Field {
	return []Field{
		{Name: "uzit_plocha", Label: "Úžitková plocha (m²)", Type: "number", Min: "1", Step: "1", Required: true},
		{Name: "pocet_izieb", Label: "Počet izieb", Type: "number", Min: "1", Step: "1", Required: true},
		{Name: "podlazie", Label: "Podlažie", Type: "number", Min: "0", Step: "1"},
		{Name: "pocet_nadz_podlazi", Label: "Počet nadzemných podlaží", Type: "number", Min: "1", Step: "1"},
		{Name: "rok_vystavby", Label: "Rok výstavby", Type: "number", Min: "1800", Step: "1"},
		{Name: "latitude", Label: "Zemepisná šírka", Type: "number", Step: "any"},
		{Name: "longitude", Label: "Zemepisná dĺžka", Type: "number", Step: "any"},
		{Name: "mesto", Label: "Mestská časť", Type: "select", Required: true, Options: []string{
			"Bratislava-Staré Mesto", "Bratislava-Ružinov", "Bratislava-Nové Mesto", "Bratislava-Karlova Ves",
			"Bratislava-Petržalka", "Bratislava-Dúbravka", "Bratislava-Rača", "Bratislava-Vrakuňa",
		}},
		{Name: "druh", Label: "Druh", Type: "select", Options: []string{
			"1 izbový byt", "2 izbový byt", "3 izbový byt", "4 izbový byt", "5 a viac izbový byt", "Garsónka", "Mezonet",
		}},
		{Name: "stav", Label: "Stav", Type: "select", Options: []string{
			"Novostavba", "Kompletná rekonštrukcia", "Čiastočná rekonštrukcia", "Pôvodný stav",
		}},
		{Name: "kurenie", Label: "Kúrenie", Type: "select", Options: []string{
			"Ústredné", "Lokálne plynové", "Lokálne elektrické", "Podlahové",
		}},
		{Name: "energ_cert", Label: "Energetický certifikát", Type: "select", Options: []string{
			"A", "B", "C", "D", "E", "F", "G",
		}},
		{Name: "vytah", Label: "Výťah", Type: "select", Options: []string{"Áno", "Nie"}},
	}
}
