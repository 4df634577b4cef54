package models

// FormPayload is the JSON object posted by the form: field name to value
type FormPayload map[string]string

// PredictionResponse is the body returned by the predict endpoint
type PredictionResponse struct {
	Prediction float64 `json:"prediction"`
}

// StatusResponse answers the liveness check the page backend has always exposed
type StatusResponse struct {
	MyApp string `json:"myapp"`
}

// UpdateModelResponse is returned after a model reload
type UpdateModelResponse struct {
	Status  string `json:"status"`
	ModelID string `json:"model_id,omitempty"`
}

// PredictionRecord is one journaled prediction
type PredictionRecord struct {
	ID         string      `json:"id"`
	ModelID    string      `json:"model_id"`
	Features   FormPayload `json:"features"`
	Prediction int64       `json:"prediction"`
	CreatedAt  string      `json:"created_at"`
}

// Listing is one apartment advert collected for training. Numeric fields
// hold -1 when the advert does not state them.
type Listing struct {
	ID                string  `json:"id"`
	Zdroj             string  `json:"zdroj"`
	Ulica             string  `json:"ulica"`
	Mesto             string  `json:"mesto"`
	Okres             string  `json:"okres"`
	Druh              string  `json:"druh"`
	Stav              string  `json:"stav"`
	Kurenie           string  `json:"kurenie"`
	EnergCert         string  `json:"energ_cert"`
	Orientacia        string  `json:"orientacia"`
	Telkoint          string  `json:"telkoint"`
	UzitPlocha        float64 `json:"uzit_plocha"`
	CenaM2            float64 `json:"cena_m2"`
	Cena              float64 `json:"cena"`
	RokVystavby       int     `json:"rok_vystavby"`
	PocetIzieb        int     `json:"pocet_izieb"`
	Podlazie          int     `json:"podlazie"`
	PocetNadzPodlazi  int     `json:"pocet_nadz_podlazi"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Timestamp         string  `json:"timestamp"`
	VerejneParkovanie string  `json:"verejne_parkovanie"`
	Vytah             string  `json:"vytah"`
	Lodzia            float64 `json:"lodzia"`
	Balkon            float64 `json:"balkon"`
	GarazoveStatie    string  `json:"garazove_statie"`
	Garaz             string  `json:"garaz"`
}

// NewListing returns a listing with every numeric field unknown
func NewListing() *Listing {
	return &Listing{
		UzitPlocha:       -1,
		CenaM2:           -1,
		Cena:             -1,
		RokVystavby:      -1,
		PocetIzieb:       -1,
		Podlazie:         -1,
		PocetNadzPodlazi: -1,
		Latitude:         -1,
		Longitude:        -1,
		Lodzia:           -1,
		Balkon:           -1,
	}
}
