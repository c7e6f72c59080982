package domain

import "strconv"

// ProductID é a chave de agregação entre os três serviços. Sempre > 0.
type ProductID int

// ValidateProductID é a única validação da identidade; nenhuma chamada de rede
// acontece antes dela.
func ValidateProductID(n int) (ProductID, error) {
	if n < 1 {
		return 0, NewFailure(KindInvalidArgument, "Invalid productId: "+strconv.Itoa(n))
	}
	return ProductID(n), nil
}

func (id ProductID) Int() int { return int(id) }

func (id ProductID) String() string { return strconv.Itoa(int(id)) }
