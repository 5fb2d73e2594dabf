package engine

// Canonical column names.
const (
	ColVehicleType    = "vehicle_type"
	ColFuelType       = "fuel_type"
	ColProvince       = "province"
	ColAddress        = "address"
	ColDate           = "date"
	ColAmountRefueled = "amount_refueled"
	ColDistance       = "distance"
	ColConsumption    = "consumption"
	ColVehicle        = "vehicle"
	ColLatitude       = "latitude"
	ColLongitude      = "longitude"
)

// Dimensions are the categorical columns offered as multi-select filters.
var Dimensions = []string{ColVehicleType, ColFuelType, ColProvince}

// Metrics are the numeric columns offered as range filters.
var Metrics = []string{ColAmountRefueled, ColDistance, ColConsumption}

// columnAliases maps common Spanish spreadsheet headers to canonical names.
var columnAliases = map[string]string{
	"tipo_vehiculo":    ColVehicleType,
	"tipo_combustible": ColFuelType,
	"provincia":        ColProvince,
	"direccion":        ColAddress,
	"fecha":            ColDate,
	"repostado":        ColAmountRefueled,
	"distancia":        ColDistance,
	"consumo":          ColConsumption,
	"vehiculo":         ColVehicle,
	"latitud":          ColLatitude,
	"longitud":         ColLongitude,
}

// canonicalTypes declares the semantic type of recognized columns.
var canonicalTypes = map[string]ColumnType{
	ColVehicleType:    TypeString,
	ColFuelType:       TypeString,
	ColProvince:       TypeString,
	ColAddress:        TypeString,
	ColVehicle:        TypeString,
	ColDate:           TypeDate,
	ColAmountRefueled: TypeNumber,
	ColDistance:       TypeNumber,
	ColConsumption:    TypeNumber,
	ColLatitude:       TypeNumber,
	ColLongitude:      TypeNumber,
}

// IsDimension reports whether name is a recognized filter dimension.
func IsDimension(name string) bool {
	for _, d := range Dimensions {
		if d == name {
			return true
		}
	}
	return false
}

// IsMetric reports whether name is a recognized range metric.
func IsMetric(name string) bool {
	for _, m := range Metrics {
		if m == name {
			return true
		}
	}
	return false
}
