package validators

import "errors"

var (
	ErrInvalidCPF   = errors.New("invalid cpf")
	ErrInvalidTaxID = errors.New("invalid cpf/cnpj")
)

// OnlyDigits remove pontuação ("529.982.247-25" → "52998224725").
func OnlyDigits(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// ValidateCPF devolve o CPF só com dígitos ou ErrInvalidCPF.
func ValidateCPF(raw string) (string, error) {
	d := OnlyDigits(raw)
	if len(d) != 11 || allSame(d) {
		return "", ErrInvalidCPF
	}

	if checkDigit(d[:9], 10) != d[9] || checkDigit(d[:10], 11) != d[10] {
		return "", ErrInvalidCPF
	}
	return d, nil
}

// ValidateTaxID aceita CPF (11 dígitos) ou CNPJ (14 dígitos).
func ValidateTaxID(raw string) (string, error) {
	d := OnlyDigits(raw)
	switch len(d) {
	case 11:
		if v, err := ValidateCPF(d); err == nil {
			return v, nil
		}
	case 14:
		if validCNPJ(d) {
			return d, nil
		}
	}
	return "", ErrInvalidTaxID
}

func checkDigit(digits string, weight int) byte {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	r := (sum * 10) % 11
	if r == 10 {
		r = 0
	}
	return byte('0' + r)
}

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

func validCNPJ(d string) bool {
	if allSame(d) {
		return false
	}
	return cnpjDigit(d[:12], cnpjWeights1) == d[12] && cnpjDigit(d[:13], cnpjWeights2) == d[13]
}

func cnpjDigit(digits string, weights []int) byte {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * weights[i]
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + 11 - r)
}

func allSame(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}
