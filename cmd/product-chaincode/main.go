// main.go — точка входа chaincode реестра продуктов для Hyperledger Fabric.
package main

import (
	"log/slog"
	"os"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/sreedotee/verisure/internal/chaincode"
	"github.com/sreedotee/verisure/internal/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cc, err := contractapi.NewChaincode(&chaincode.ProductContract{})
	if err != nil {
		logger.Error("Ошибка создания chaincode", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cc.Info.Title = "verisure-product"
	cc.Info.Version = config.Version

	logger.Info("Chaincode запускается", slog.String("version", config.Version))
	if err := cc.Start(); err != nil {
		logger.Error("Ошибка запуска chaincode", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
