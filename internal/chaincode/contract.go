// Пакет chaincode — смарт-контракт реестра продуктов для Hyperledger Fabric.
//
// Контракт хранит продукт под ключом productPrefix+ID в виде JSON.
// Признак подделки только устанавливается, но никогда не снимается.
package chaincode

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/sreedotee/verisure/internal/ledger"
)

const productPrefix = "PRODUCT_"

// События контракта.
const (
	EventProductAdded         = "ProductAdded"
	EventProductStatusUpdated = "ProductStatusUpdated"
)

// ProductContract — контракт реестра продуктов.
type ProductContract struct {
	contractapi.Contract
}

// ProductAsset — состояние продукта в реестре.
type ProductAsset struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	IsFake    bool   `json:"is_fake"`
	// Manufacturer — MSP организации, зарегистрировавшей продукт
	Manufacturer string `json:"manufacturer"`
	// FlaggedBy — MSP организации, пометившей продукт подделкой
	FlaggedBy string `json:"flagged_by,omitempty" metadata:",optional"`
}

// productAddedEvent — полезная нагрузка ProductAdded.
type productAddedEvent struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
}

// productStatusEvent — полезная нагрузка ProductStatusUpdated.
type productStatusEvent struct {
	ProductID string `json:"product_id"`
	IsFake    bool   `json:"is_fake"`
	Admin     string `json:"admin"`
}

// ProductExists проверяет наличие продукта в реестре.
func (c *ProductContract) ProductExists(ctx contractapi.TransactionContextInterface, productID string) (bool, error) {
	data, err := ctx.GetStub().GetState(productPrefix + productID)
	if err != nil {
		return false, fmt.Errorf("чтение состояния: %w", err)
	}
	return data != nil, nil
}

// AddProduct регистрирует продукт. Повторная регистрация запрещена.
func (c *ProductContract) AddProduct(ctx contractapi.TransactionContextInterface, productID, name string) error {
	productID = strings.TrimSpace(productID)
	name = strings.TrimSpace(name)
	if productID == "" || name == "" {
		return fmt.Errorf("идентификатор и имя продукта обязательны")
	}

	exists, err := c.ProductExists(ctx, productID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("продукт %s уже зарегистрирован", productID)
	}

	msp, err := ctx.GetClientIdentity().GetMSPID()
	if err != nil {
		return fmt.Errorf("получение MSP ID: %w", err)
	}

	asset := ProductAsset{ProductID: productID, Name: name, Manufacturer: msp}
	if err := c.putAsset(ctx, &asset); err != nil {
		return err
	}

	return setEvent(ctx, EventProductAdded, productAddedEvent{
		ProductID:    productID,
		Name:         name,
		Manufacturer: msp,
	})
}

// VerifyProduct возвращает продукт или ошибку с маркером PRODUCT_NOT_FOUND.
func (c *ProductContract) VerifyProduct(ctx contractapi.TransactionContextInterface, productID string) (*ProductAsset, error) {
	return c.getAsset(ctx, strings.TrimSpace(productID))
}

// MarkAsFake помечает продукт подделкой. Повторный вызов не является ошибкой.
func (c *ProductContract) MarkAsFake(ctx contractapi.TransactionContextInterface, productID string) error {
	asset, err := c.getAsset(ctx, strings.TrimSpace(productID))
	if err != nil {
		return err
	}
	if asset.IsFake {
		return nil
	}

	msp, err := ctx.GetClientIdentity().GetMSPID()
	if err != nil {
		return fmt.Errorf("получение MSP ID: %w", err)
	}

	asset.IsFake = true
	asset.FlaggedBy = msp
	if err := c.putAsset(ctx, asset); err != nil {
		return err
	}

	return setEvent(ctx, EventProductStatusUpdated, productStatusEvent{
		ProductID: asset.ProductID,
		IsFake:    true,
		Admin:     msp,
	})
}

func (c *ProductContract) getAsset(ctx contractapi.TransactionContextInterface, productID string) (*ProductAsset, error) {
	data, err := ctx.GetStub().GetState(productPrefix + productID)
	if err != nil {
		return nil, fmt.Errorf("чтение состояния: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("%s: продукт %s не зарегистрирован", ledger.ContractNotFoundCode, productID)
	}

	var asset ProductAsset
	if err := json.Unmarshal(data, &asset); err != nil {
		return nil, fmt.Errorf("разбор состояния продукта %s: %w", productID, err)
	}
	return &asset, nil
}

func (c *ProductContract) putAsset(ctx contractapi.TransactionContextInterface, asset *ProductAsset) error {
	data, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("сериализация продукта: %w", err)
	}
	return ctx.GetStub().PutState(productPrefix+asset.ProductID, data)
}

func setEvent(ctx contractapi.TransactionContextInterface, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("сериализация события %s: %w", name, err)
	}
	return ctx.GetStub().SetEvent(name, data)
}
