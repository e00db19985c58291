package weather

// Condition maps a WMO weather interpretation code to its Spanish label.
func Condition(code int) string {
	switch {
	case code == 0:
		return "Despejado"
	case code == 1:
		return "Mayormente Despejado"
	case code == 2:
		return "Parcialmente Nublado"
	case code == 3:
		return "Nublado"
	case code >= 45 && code <= 48:
		return "Neblina"
	case code >= 51 && code <= 55:
		return "Llovizna"
	case code >= 56 && code <= 57:
		return "Llovizna Helada"
	case code >= 61 && code <= 65:
		return "Lluvia"
	case code >= 66 && code <= 67:
		return "Lluvia Helada"
	case code >= 71 && code <= 77:
		return "Nieve"
	case code >= 80 && code <= 82:
		return "Chubascos"
	case code >= 85 && code <= 86:
		return "Nevadas"
	case code >= 95 && code <= 99:
		return "Tormenta Eléctrica"
	default:
		return "Desconocido"
	}
}
