package enums

type Building string

const (
	BuildingItaca       Building = "ITACA"
	BuildingPadiglioneC Building = "PADIGLIONE C"
	BuildingPadiglioneD Building = "PADIGLIONE D"
)

var Buildings = []Building{BuildingItaca, BuildingPadiglioneC, BuildingPadiglioneD}
