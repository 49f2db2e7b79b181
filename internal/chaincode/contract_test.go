package chaincode

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/sreedotee/verisure/internal/ledger"
)

// mockStub — world state в памяти. Нереализованные методы интерфейса паникуют.
type mockStub struct {
	shim.ChaincodeStubInterface
	state  map[string][]byte
	events map[string][]byte
}

func newMockStub() *mockStub {
	return &mockStub{state: map[string][]byte{}, events: map[string][]byte{}}
}

func (s *mockStub) GetState(key string) ([]byte, error) { return s.state[key], nil }

func (s *mockStub) PutState(key string, value []byte) error {
	s.state[key] = value
	return nil
}

func (s *mockStub) SetEvent(name string, payload []byte) error {
	s.events[name] = payload
	return nil
}

// mockIdentity — идентичность клиента с фиксированным MSP.
type mockIdentity struct {
	cid.ClientIdentity
	msp string
}

func (m *mockIdentity) GetMSPID() (string, error) { return m.msp, nil }

func newContext(stub *mockStub, msp string) *contractapi.TransactionContext {
	ctx := new(contractapi.TransactionContext)
	ctx.SetStub(stub)
	ctx.SetClientIdentity(&mockIdentity{msp: msp})
	return ctx
}

func TestAddAndVerify(t *testing.T) {
	stub := newMockStub()
	ctx := newContext(stub, "Org1MSP")
	c := new(ProductContract)

	if err := c.AddProduct(ctx, " P1 ", "Shoe"); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}

	asset, err := c.VerifyProduct(ctx, "P1")
	if err != nil {
		t.Fatalf("VerifyProduct: %v", err)
	}
	if asset.Name != "Shoe" || asset.IsFake || asset.Manufacturer != "Org1MSP" {
		t.Errorf("VerifyProduct = %+v", asset)
	}

	var ev productAddedEvent
	if err := json.Unmarshal(stub.events[EventProductAdded], &ev); err != nil {
		t.Fatalf("событие ProductAdded: %v", err)
	}
	if ev.ProductID != "P1" || ev.Manufacturer != "Org1MSP" {
		t.Errorf("ProductAdded = %+v", ev)
	}

	exists, err := c.ProductExists(ctx, "P1")
	if err != nil || !exists {
		t.Errorf("ProductExists = (%v, %v)", exists, err)
	}
}

func TestAddProduct_Duplicate(t *testing.T) {
	ctx := newContext(newMockStub(), "Org1MSP")
	c := new(ProductContract)

	if err := c.AddProduct(ctx, "P1", "Shoe"); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if err := c.AddProduct(ctx, "P1", "Boot"); err == nil {
		t.Error("повторный AddProduct не вернул ошибку")
	}
	if err := c.AddProduct(ctx, "P2", "  "); err == nil {
		t.Error("AddProduct с пустым именем не вернул ошибку")
	}
}

func TestVerifyProduct_NotFound(t *testing.T) {
	ctx := newContext(newMockStub(), "Org1MSP")
	_, err := new(ProductContract).VerifyProduct(ctx, "P404")
	if err == nil || !strings.Contains(err.Error(), ledger.ContractNotFoundCode) {
		t.Errorf("VerifyProduct(P404) = %v, ожидалась ошибка с %s", err, ledger.ContractNotFoundCode)
	}
}

func TestMarkAsFake_Monotonic(t *testing.T) {
	stub := newMockStub()
	c := new(ProductContract)

	if err := c.AddProduct(newContext(stub, "Org1MSP"), "P1", "Shoe"); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}

	admin := newContext(stub, "RegulatorMSP")
	if err := c.MarkAsFake(admin, "P1"); err != nil {
		t.Fatalf("MarkAsFake: %v", err)
	}
	// Повторная пометка — не ошибка и без нового события
	delete(stub.events, EventProductStatusUpdated)
	if err := c.MarkAsFake(newContext(stub, "OtherMSP"), "P1"); err != nil {
		t.Fatalf("повторный MarkAsFake: %v", err)
	}
	if _, ok := stub.events[EventProductStatusUpdated]; ok {
		t.Error("повторный MarkAsFake сгенерировал событие")
	}

	asset, err := c.VerifyProduct(admin, "P1")
	if err != nil {
		t.Fatalf("VerifyProduct: %v", err)
	}
	if !asset.IsFake || asset.FlaggedBy != "RegulatorMSP" {
		t.Errorf("после MarkAsFake: %+v", asset)
	}

	if err := c.MarkAsFake(admin, "P404"); err == nil {
		t.Error("MarkAsFake(P404) не вернул ошибку")
	}
}
